package controller

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"crm_backend/internal/model"
	"crm_backend/internal/store"
	"crm_backend/pkg/apperr"
	"crm_backend/pkg/database"
	"crm_backend/pkg/metrics"
)

type ActivityInput struct {
	ActivityType model.ActivityType `json:"activity_type"`
	Title        string             `json:"title"`
	Notes        string             `json:"notes"`
	Duration     *int               `json:"duration"`
	ActivityDate string             `json:"activity_date"`
}

func activityLeadIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("lead_id"), 10, 32)
	if err != nil {
		return 0, apperr.Validationf("Invalid lead ID")
	}
	return uint(id), nil
}

// parseActivityDate accepts RFC 3339 timestamps and plain calendar dates.
func parseActivityDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperr.Validationf("activity_date is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validationf("activity_date must be a valid date")
}

func ListActivities(c *fiber.Ctx) error {
	leadID, err := activityLeadIDParam(c)
	if err != nil {
		return err
	}

	activities, err := store.ListActivities(database.GetDB(), viewerFromCtx(c), leadID)
	if err != nil {
		return err
	}
	return c.JSON(activities)
}

func CreateActivity(c *fiber.Ctx) error {
	leadID, err := activityLeadIDParam(c)
	if err != nil {
		return err
	}

	input := new(ActivityInput)
	if err := c.BodyParser(input); err != nil {
		return apperr.Validationf("Invalid input")
	}

	activityDate, err := parseActivityDate(input.ActivityDate)
	if err != nil {
		return err
	}

	activity := model.Activity{
		ActivityType: input.ActivityType,
		Title:        input.Title,
		Notes:        input.Notes,
		Duration:     input.Duration,
		ActivityDate: activityDate,
	}

	created, err := store.CreateActivity(database.GetDB(), viewerFromCtx(c), leadID, &activity)
	if err != nil {
		return err
	}

	metrics.ObserveActivityCreated(string(created.ActivityType))
	return c.Status(fiber.StatusCreated).JSON(created)
}
