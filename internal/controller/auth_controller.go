package controller

import (
	"github.com/gofiber/fiber/v2"

	"crm_backend/internal/store"
	"crm_backend/pkg/apperr"
	"crm_backend/pkg/database"
	"crm_backend/pkg/utils/jwt"
)

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginInput is form-encoded for OAuth2 password-flow clients; the email
// travels in the username field.
type LoginInput struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return apperr.Validationf("Invalid input")
	}

	user, err := store.RegisterUser(database.GetDB(), input.Email, input.Password, input.FirstName, input.LastName)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(user.GetPublicProfile())
}

func Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return apperr.Validationf("Invalid input")
	}

	user, err := store.AuthenticateUser(database.GetDB(), input.Username, input.Password)
	if err != nil {
		return err
	}

	token, err := jwt.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"access_token":       token,
		"token_type":         "bearer",
		"expires_in_minutes": jwt.AccessMinutes(),
	})
}

// GetMe returns the authenticated user's profile.
func GetMe(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	user, err := store.GetUser(database.GetDB(), claims.UserID)
	if err != nil {
		return err
	}

	return c.JSON(user.GetPublicProfile())
}
