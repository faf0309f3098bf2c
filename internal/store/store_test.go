package store

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"crm_backend/internal/model"
	"crm_backend/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenTest()
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Lead{}, &model.Activity{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, admin bool) *model.User {
	t.Helper()
	user := model.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		IsAdmin:      admin,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return &user
}

// leadSpec builds fixture leads with controllable timestamps.
type leadSpec struct {
	firstName string
	lastName  string
	email     string
	status    model.LeadStatus
	source    string
	budgetMin *int
	budgetMax *int
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

func createLead(t *testing.T, db *gorm.DB, owner *model.User, spec leadSpec) *model.Lead {
	t.Helper()
	if spec.firstName == "" {
		spec.firstName = "Jo"
	}
	if spec.lastName == "" {
		spec.lastName = "Doe"
	}
	if spec.status == "" {
		spec.status = model.LeadStatusNew
	}
	if spec.createdAt.IsZero() {
		spec.createdAt = time.Now().UTC()
	}
	if spec.updatedAt.IsZero() {
		spec.updatedAt = spec.createdAt
	}

	lead := model.Lead{
		FirstName: spec.firstName,
		LastName:  spec.lastName,
		Email:     spec.email,
		Status:    spec.status,
		Source:    spec.source,
		BudgetMin: spec.budgetMin,
		BudgetMax: spec.budgetMax,
		IsActive:  spec.active,
		UserID:    owner.ID,
		CreatedAt: spec.createdAt,
		UpdatedAt: spec.updatedAt,
	}
	if err := db.Create(&lead).Error; err != nil {
		t.Fatalf("creating lead fixture: %v", err)
	}
	if !spec.active {
		// GORM omits zero-value fields when a default tag is set, so an
		// inactive fixture must be flipped explicitly after insert.
		if err := db.Model(&lead).UpdateColumn("is_active", false).Error; err != nil {
			t.Fatalf("deactivating lead fixture: %v", err)
		}
	}
	return &lead
}

func createActivity(t *testing.T, db *gorm.DB, lead *model.Lead, typ model.ActivityType, title string, at time.Time, duration *int) *model.Activity {
	t.Helper()
	activity := model.Activity{
		LeadID:       lead.ID,
		UserID:       lead.UserID,
		ActivityType: typ,
		Title:        title,
		Duration:     duration,
		ActivityDate: at,
	}
	if err := db.Create(&activity).Error; err != nil {
		t.Fatalf("creating activity fixture: %v", err)
	}
	return &activity
}

func intPtr(n int) *int {
	return &n
}
