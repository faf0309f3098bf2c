package model

import (
	"time"

	"crm_backend/pkg/apperr"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusWon, LeadStatusLost:
		return true
	}
	return false
}

type Lead struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	FirstName        string     `json:"first_name" gorm:"size:100;not null"`
	LastName         string     `json:"last_name" gorm:"size:100;not null"`
	Email            string     `json:"email" gorm:"size:255;index"`
	Phone            string     `json:"phone" gorm:"size:50"`
	Status           LeadStatus `json:"status" gorm:"size:50;index;default:'new'"`
	Source           string     `json:"source" gorm:"size:100"`
	BudgetMin        *int       `json:"budget_min"`
	BudgetMax        *int       `json:"budget_max"`
	PropertyInterest string     `json:"property_interest" gorm:"size:255"`
	Location         string     `json:"location" gorm:"size:255"`
	AssignedTo       string     `json:"assigned_to" gorm:"size:255"`
	Notes            string     `json:"notes" gorm:"type:text"`
	IsActive         bool       `json:"is_active" gorm:"index;default:true"`
	UserID           uint       `json:"user_id" gorm:"index;not null"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Owner      User       `json:"-" gorm:"foreignKey:UserID"`
	Activities []Activity `json:"-" gorm:"foreignKey:LeadID"`
}

// Validate checks the invariants shared by create and update.
func (l *Lead) Validate() error {
	if l.FirstName == "" {
		return apperr.Validationf("first_name is required")
	}
	if l.LastName == "" {
		return apperr.Validationf("last_name is required")
	}
	if !l.Status.Valid() {
		return apperr.Validationf("status must be one of: new, contacted, qualified, won, lost")
	}
	if l.BudgetMin != nil && *l.BudgetMin < 0 {
		return apperr.Validationf("budget_min must be non-negative")
	}
	if l.BudgetMax != nil && *l.BudgetMax < 0 {
		return apperr.Validationf("budget_max must be non-negative")
	}
	if l.BudgetMin != nil && l.BudgetMax != nil && *l.BudgetMin > *l.BudgetMax {
		return apperr.Validationf("budget_min cannot exceed budget_max")
	}
	return nil
}
