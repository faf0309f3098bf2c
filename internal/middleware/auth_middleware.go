package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"crm_backend/pkg/apperr"
	"crm_backend/pkg/utils/jwt"
)

// AuthMiddleware verifies the bearer token on every protected request and
// places the claims in the request locals for downstream handlers.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return apperr.Authenticationf("Missing authorization header")
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return apperr.Authenticationf("Authorization header must be a bearer token")
		}

		claims, err := jwt.ValidateToken(strings.TrimPrefix(header, prefix))
		if err != nil {
			return apperr.Authenticationf("Invalid or expired token. Please log in again.")
		}

		c.Locals("user", claims)
		return c.Next()
	}
}
