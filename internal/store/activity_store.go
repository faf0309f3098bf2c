package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"crm_backend/internal/model"
	"crm_backend/pkg/apperr"
)

// visibleLead resolves a lead for the activity paths. Soft-deleted leads
// stay addressable here so their history survives the lead's removal from
// the default views; only existence and ownership gate access.
func visibleLead(db *gorm.DB, v Viewer, leadID uint) (*model.Lead, error) {
	var lead model.Lead
	err := db.First(&lead, leadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("Lead not found")
	}
	if err != nil {
		return nil, fmt.Errorf("fetching lead %d: %w", leadID, err)
	}
	if !v.IsAdmin && lead.UserID != v.UserID {
		return nil, apperr.NotFoundf("Lead not found")
	}
	return &lead, nil
}

// ListActivities returns every activity for a visible lead, newest first.
func ListActivities(db *gorm.DB, v Viewer, leadID uint) ([]model.Activity, error) {
	if _, err := visibleLead(db, v, leadID); err != nil {
		return nil, err
	}

	var activities []model.Activity
	err := db.Where("lead_id = ?", leadID).
		Order("activity_date DESC, id DESC").
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("listing activities for lead %d: %w", leadID, err)
	}
	return activities, nil
}

// CreateActivity validates and attaches a new activity to a visible lead,
// recording the acting user.
func CreateActivity(db *gorm.DB, v Viewer, leadID uint, activity *model.Activity) (*model.Activity, error) {
	if _, err := visibleLead(db, v, leadID); err != nil {
		return nil, err
	}

	if err := activity.Validate(); err != nil {
		return nil, err
	}

	activity.LeadID = leadID
	activity.UserID = v.UserID
	if err := db.Create(activity).Error; err != nil {
		return nil, fmt.Errorf("creating activity for lead %d: %w", leadID, err)
	}
	return activity, nil
}
