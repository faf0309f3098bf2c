package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"crm_backend/internal/model"
	"crm_backend/pkg/apperr"
)

// Viewer identifies the acting user for scoping queries. Admins see every
// user's leads; everyone else only their own.
type Viewer struct {
	UserID  uint
	IsAdmin bool
}

// LeadFilter holds the conjunctive list/export filters.
type LeadFilter struct {
	Query     string
	Status    string
	Source    string
	MinBudget *int
	MaxBudget *int
}

// LeadOut decorates a lead with its owner's display name for responses.
type LeadOut struct {
	model.Lead
	OwnerName string `json:"owner_name"`
}

type LeadPage struct {
	Items    []LeadOut `json:"items"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

const MaxPageSize = 100

// scopedLeads returns the base query every default read path starts from:
// active leads, restricted to the viewer's own unless admin.
func scopedLeads(db *gorm.DB, v Viewer) *gorm.DB {
	q := db.Model(&model.Lead{}).Where("is_active = ?", true)
	if !v.IsAdmin {
		q = q.Where("user_id = ?", v.UserID)
	}
	return q
}

func applyLeadFilter(q *gorm.DB, f LeadFilter) (*gorm.DB, error) {
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}
	if f.Status != "" {
		if !model.LeadStatus(f.Status).Valid() {
			return nil, apperr.Validationf("invalid status filter %q", f.Status)
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.Source != "" {
		q = q.Where("LOWER(source) LIKE ?", "%"+strings.ToLower(f.Source)+"%")
	}
	if f.MinBudget != nil {
		q = q.Where("budget_min IS NOT NULL AND budget_min >= ?", *f.MinBudget)
	}
	if f.MaxBudget != nil {
		q = q.Where("budget_max IS NOT NULL AND budget_max <= ?", *f.MaxBudget)
	}
	return q, nil
}

func toLeadOut(l model.Lead) LeadOut {
	out := LeadOut{Lead: l}
	if l.Owner.ID != 0 {
		out.OwnerName = l.Owner.DisplayName()
	}
	return out
}

// ListLeads returns one page of the viewer's leads matching the filter,
// newest first, plus the total count of matches for pagination math.
func ListLeads(db *gorm.DB, v Viewer, f LeadFilter, page, pageSize int) (*LeadPage, error) {
	if page < 1 {
		return nil, apperr.Validationf("page must be a positive integer")
	}
	if pageSize < 1 {
		return nil, apperr.Validationf("page_size must be a positive integer")
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	countQ, err := applyLeadFilter(scopedLeads(db, v), f)
	if err != nil {
		return nil, err
	}
	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting leads: %w", err)
	}

	// Fresh chain for the page query; reusing a finished GORM chain
	// carries statement state over.
	q, err := applyLeadFilter(scopedLeads(db, v), f)
	if err != nil {
		return nil, err
	}

	var leads []model.Lead
	err = q.Preload("Owner").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&leads).Error
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}

	items := make([]LeadOut, 0, len(leads))
	for _, l := range leads {
		items = append(items, toLeadOut(l))
	}

	return &LeadPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetLead fetches one visible lead. Absent, inactive, and foreign-owned
// leads are all reported as not found so record existence never leaks.
func GetLead(db *gorm.DB, v Viewer, id uint) (*LeadOut, error) {
	var lead model.Lead
	err := scopedLeads(db, v).Preload("Owner").Where("leads.id = ?", id).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("Lead not found")
	}
	if err != nil {
		return nil, fmt.Errorf("fetching lead %d: %w", id, err)
	}
	out := toLeadOut(lead)
	return &out, nil
}

// CreateLead validates and persists a new lead owned by the creator.
// assigned_to falls back to the creator's display name when blank.
func CreateLead(db *gorm.DB, creator *model.User, lead *model.Lead) (*LeadOut, error) {
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}
	if err := lead.Validate(); err != nil {
		return nil, err
	}
	if lead.AssignedTo == "" {
		lead.AssignedTo = creator.DisplayName()
	}
	lead.UserID = creator.ID
	lead.IsActive = true

	if err := db.Create(lead).Error; err != nil {
		return nil, fmt.Errorf("creating lead: %w", err)
	}

	lead.Owner = *creator
	out := toLeadOut(*lead)
	return &out, nil
}

// LeadFields is the full mutable field set applied by UpdateLead.
type LeadFields struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Status           model.LeadStatus
	Source           string
	BudgetMin        *int
	BudgetMax        *int
	PropertyInterest string
	Location         string
	AssignedTo       string
	Notes            string
	IsActive         *bool
}

// UpdateLead replaces the mutable fields of a visible lead, re-validating
// the same invariants as create.
func UpdateLead(db *gorm.DB, v Viewer, id uint, fields LeadFields) (*LeadOut, error) {
	var lead model.Lead
	err := scopedLeads(db, v).Preload("Owner").Where("leads.id = ?", id).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("Lead not found")
	}
	if err != nil {
		return nil, fmt.Errorf("fetching lead %d: %w", id, err)
	}

	lead.FirstName = fields.FirstName
	lead.LastName = fields.LastName
	lead.Email = fields.Email
	lead.Phone = fields.Phone
	lead.Status = fields.Status
	lead.Source = fields.Source
	lead.BudgetMin = fields.BudgetMin
	lead.BudgetMax = fields.BudgetMax
	lead.PropertyInterest = fields.PropertyInterest
	lead.Location = fields.Location
	lead.AssignedTo = fields.AssignedTo
	lead.Notes = fields.Notes
	if fields.IsActive != nil {
		lead.IsActive = *fields.IsActive
	}
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	if err := db.Save(&lead).Error; err != nil {
		return nil, fmt.Errorf("updating lead %d: %w", id, err)
	}

	out := toLeadOut(lead)
	return &out, nil
}

// SoftDeleteLead marks a lead inactive. Deleting an already-inactive lead
// the viewer can reach is a no-op, so the operation is idempotent.
func SoftDeleteLead(db *gorm.DB, v Viewer, id uint) error {
	q := db.Model(&model.Lead{}).Where("id = ?", id)
	if !v.IsAdmin {
		q = q.Where("user_id = ?", v.UserID)
	}

	var lead model.Lead
	err := q.First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("Lead not found")
	}
	if err != nil {
		return fmt.Errorf("fetching lead %d: %w", id, err)
	}
	if !lead.IsActive {
		return nil
	}

	if err := db.Model(&lead).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("deleting lead %d: %w", id, err)
	}
	return nil
}

// ExportLeads returns the full filtered set, unpaginated, for CSV export.
func ExportLeads(db *gorm.DB, v Viewer, f LeadFilter) ([]LeadOut, error) {
	q, err := applyLeadFilter(scopedLeads(db, v), f)
	if err != nil {
		return nil, err
	}

	var leads []model.Lead
	err = q.Preload("Owner").Order("created_at DESC, id DESC").Find(&leads).Error
	if err != nil {
		return nil, fmt.Errorf("exporting leads: %w", err)
	}

	out := make([]LeadOut, 0, len(leads))
	for _, l := range leads {
		out = append(out, toLeadOut(l))
	}
	return out, nil
}
