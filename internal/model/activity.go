package model

import (
	"time"

	"crm_backend/pkg/apperr"
)

type ActivityType string

const (
	ActivityTypeCall    ActivityType = "call"
	ActivityTypeMeeting ActivityType = "meeting"
	ActivityTypeEmail   ActivityType = "email"
	ActivityTypeNote    ActivityType = "note"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityTypeCall, ActivityTypeMeeting, ActivityTypeEmail, ActivityTypeNote:
		return true
	}
	return false
}

// Activity is a single logged interaction attached to one lead. Activities
// are create-only; they are never updated or deleted.
type Activity struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	LeadID       uint         `json:"lead_id" gorm:"index;not null"`
	UserID       uint         `json:"user_id" gorm:"index"`
	ActivityType ActivityType `json:"activity_type" gorm:"size:50"`
	Title        string       `json:"title" gorm:"size:200"`
	Notes        string       `json:"notes" gorm:"type:text"`
	Duration     *int         `json:"duration"`
	ActivityDate time.Time    `json:"activity_date" gorm:"index"`
	CreatedAt    time.Time    `json:"created_at"`

	Lead Lead `json:"-" gorm:"foreignKey:LeadID"`
}

// Validate enforces the activity invariants, most notably that a call must
// carry a positive duration while other types may omit it.
func (a *Activity) Validate() error {
	if !a.ActivityType.Valid() {
		return apperr.Validationf("activity_type must be one of: call, meeting, email, note")
	}
	if a.Title == "" {
		return apperr.Validationf("title is required")
	}
	if a.ActivityDate.IsZero() {
		return apperr.Validationf("activity_date is required")
	}
	if a.ActivityType == ActivityTypeCall {
		if a.Duration == nil || *a.Duration <= 0 {
			return apperr.Validationf("duration must be a positive number of minutes for call activities")
		}
	} else if a.Duration != nil && *a.Duration < 0 {
		return apperr.Validationf("duration cannot be negative")
	}
	return nil
}
