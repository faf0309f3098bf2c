package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"crm_backend/internal/store"
	"crm_backend/pkg/database"
)

// GetDashboard recomputes the metrics payload for the caller's visible
// lead set. One clock read per request keeps all windows consistent.
func GetDashboard(c *fiber.Ctx) error {
	stats, err := store.Dashboard(database.GetDB(), viewerFromCtx(c), time.Now().UTC())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
