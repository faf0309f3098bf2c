package controller

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"crm_backend/internal/model"
	"crm_backend/internal/store"
	"crm_backend/pkg/apperr"
	"crm_backend/pkg/database"
	"crm_backend/pkg/metrics"
	"crm_backend/pkg/utils/jwt"
)

// LeadInput carries the full mutable field set for create and update.
// is_active is honored on update only.
type LeadInput struct {
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	Status           model.LeadStatus `json:"status"`
	Source           string           `json:"source"`
	BudgetMin        *int             `json:"budget_min"`
	BudgetMax        *int             `json:"budget_max"`
	PropertyInterest string           `json:"property_interest"`
	Location         string           `json:"location"`
	AssignedTo       string           `json:"assigned_to"`
	Notes            string           `json:"notes"`
	IsActive         *bool            `json:"is_active"`
}

func viewerFromCtx(c *fiber.Ctx) store.Viewer {
	claims := c.Locals("user").(*jwt.Claims)
	return store.Viewer{UserID: claims.UserID, IsAdmin: claims.IsAdmin}
}

func leadIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, apperr.Validationf("Invalid lead ID")
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter. Blank values count
// as unset; anything non-numeric is a validation error.
func queryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Validationf("Invalid filter input for %s", name)
	}
	return &n, nil
}

func leadFilterFromQuery(c *fiber.Ctx) (store.LeadFilter, error) {
	minBudget, err := queryInt(c, "min_budget")
	if err != nil {
		return store.LeadFilter{}, err
	}
	maxBudget, err := queryInt(c, "max_budget")
	if err != nil {
		return store.LeadFilter{}, err
	}

	return store.LeadFilter{
		Query:     c.Query("q"),
		Status:    c.Query("status"),
		Source:    c.Query("source"),
		MinBudget: minBudget,
		MaxBudget: maxBudget,
	}, nil
}

func ListLeads(c *fiber.Ctx) error {
	filter, err := leadFilterFromQuery(c)
	if err != nil {
		return err
	}

	page := 1
	if p, err := queryInt(c, "page"); err != nil {
		return err
	} else if p != nil {
		page = *p
	}
	pageSize := 10
	if ps, err := queryInt(c, "page_size"); err != nil {
		return err
	} else if ps != nil {
		pageSize = *ps
	}

	result, err := store.ListLeads(database.GetDB(), viewerFromCtx(c), filter, page, pageSize)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func GetLead(c *fiber.Ctx) error {
	id, err := leadIDParam(c)
	if err != nil {
		return err
	}

	lead, err := store.GetLead(database.GetDB(), viewerFromCtx(c), id)
	if err != nil {
		return err
	}
	return c.JSON(lead)
}

func CreateLead(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(LeadInput)
	if err := c.BodyParser(input); err != nil {
		return apperr.Validationf("Invalid input")
	}

	db := database.GetDB()
	creator, err := store.GetUser(db, claims.UserID)
	if err != nil {
		return err
	}

	lead := model.Lead{
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Email:            input.Email,
		Phone:            input.Phone,
		Status:           input.Status,
		Source:           input.Source,
		BudgetMin:        input.BudgetMin,
		BudgetMax:        input.BudgetMax,
		PropertyInterest: input.PropertyInterest,
		Location:         input.Location,
		AssignedTo:       input.AssignedTo,
		Notes:            input.Notes,
	}

	created, err := store.CreateLead(db, creator, &lead)
	if err != nil {
		return err
	}

	metrics.ObserveLeadCreated()
	return c.Status(fiber.StatusCreated).JSON(created)
}

func UpdateLead(c *fiber.Ctx) error {
	id, err := leadIDParam(c)
	if err != nil {
		return err
	}

	input := new(LeadInput)
	if err := c.BodyParser(input); err != nil {
		return apperr.Validationf("Invalid input")
	}

	fields := store.LeadFields{
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Email:            input.Email,
		Phone:            input.Phone,
		Status:           input.Status,
		Source:           input.Source,
		BudgetMin:        input.BudgetMin,
		BudgetMax:        input.BudgetMax,
		PropertyInterest: input.PropertyInterest,
		Location:         input.Location,
		AssignedTo:       input.AssignedTo,
		Notes:            input.Notes,
		IsActive:         input.IsActive,
	}

	updated, err := store.UpdateLead(database.GetDB(), viewerFromCtx(c), id, fields)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

func DeleteLead(c *fiber.Ctx) error {
	id, err := leadIDParam(c)
	if err != nil {
		return err
	}

	if err := store.SoftDeleteLead(database.GetDB(), viewerFromCtx(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

var csvHeader = []string{
	"id", "first_name", "last_name", "email", "phone", "status", "source",
	"budget_min", "budget_max", "property_interest", "created_at", "updated_at", "owner_name",
}

// ExportLeadsCSV streams the filtered (unpaginated) lead set as CSV.
func ExportLeadsCSV(c *fiber.Ctx) error {
	filter, err := leadFilterFromQuery(c)
	if err != nil {
		return err
	}

	leads, err := store.ExportLeads(database.GetDB(), viewerFromCtx(c), filter)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range leads {
		if err := w.Write([]string{
			strconv.FormatUint(uint64(l.ID), 10),
			l.FirstName,
			l.LastName,
			l.Email,
			l.Phone,
			string(l.Status),
			l.Source,
			formatOptionalInt(l.BudgetMin),
			formatOptionalInt(l.BudgetMax),
			l.PropertyInterest,
			l.CreatedAt.Format(time.RFC3339),
			l.UpdatedAt.Format(time.RFC3339),
			l.OwnerName,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename=leads.csv`)
	return c.Send(buf.Bytes())
}

func formatOptionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
