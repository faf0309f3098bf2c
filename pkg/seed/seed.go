package seed

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"crm_backend/internal/model"
)

// EnsureAdmin creates the bootstrap admin account when both values are
// configured and no such user exists yet. Idempotent.
func EnsureAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		if !existing.IsAdmin {
			if err := db.Model(&existing).Update("is_admin", true).Error; err != nil {
				return fmt.Errorf("promoting admin user: %w", err)
			}
			log.Printf("Promoted %s to admin", email)
		}
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := model.User{
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	log.Printf("Created admin user %s", email)
	return nil
}

func intPtr(n int) *int {
	return &n
}

// SeedDemoData populates a small demo dataset: two agents, leads spread
// over the trailing weeks, and a few activities. No-op when leads exist.
func SeedDemoData(db *gorm.DB) error {
	var leadCount int64
	if err := db.Model(&model.Lead{}).Count(&leadCount).Error; err != nil {
		return err
	}
	if leadCount > 0 {
		log.Println("Demo data already present, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		agents := []model.User{
			{Email: "alice@demo.local", PasswordHash: string(hash), FirstName: "Alice", LastName: "Nguyen"},
			{Email: "bob@demo.local", PasswordHash: string(hash), FirstName: "Bob", LastName: "Keller"},
		}
		for i := range agents {
			if err := tx.FirstOrCreate(&agents[i], model.User{Email: agents[i].Email}).Error; err != nil {
				return fmt.Errorf("seeding user %s: %w", agents[i].Email, err)
			}
		}

		now := time.Now().UTC()
		statuses := []model.LeadStatus{
			model.LeadStatusNew, model.LeadStatusContacted, model.LeadStatusQualified,
			model.LeadStatusWon, model.LeadStatusLost,
		}
		sources := []string{"website", "referral", "zillow", "walk-in", ""}
		firstNames := []string{"Jordan", "Sam", "Priya", "Diego", "Mei", "Tunde", "Lena", "Omar"}
		lastNames := []string{"Rivera", "Okafor", "Schmidt", "Tanaka", "Hassan", "Novak", "Silva", "Park"}

		for i := 0; i < 24; i++ {
			agent := agents[i%len(agents)]
			createdAt := now.AddDate(0, 0, -(i * 2))
			lead := model.Lead{
				FirstName:        firstNames[i%len(firstNames)],
				LastName:         lastNames[(i/2)%len(lastNames)],
				Email:            fmt.Sprintf("lead%d@example.com", i+1),
				Phone:            fmt.Sprintf("555-01%02d", i),
				Status:           statuses[i%len(statuses)],
				Source:           sources[i%len(sources)],
				BudgetMin:        intPtr(200000 + i*10000),
				BudgetMax:        intPtr(350000 + i*10000),
				PropertyInterest: "3bd house",
				Location:         "Springfield",
				AssignedTo:       agent.DisplayName(),
				IsActive:         true,
				UserID:           agent.ID,
				CreatedAt:        createdAt,
				UpdatedAt:        createdAt,
			}
			if err := tx.Create(&lead).Error; err != nil {
				return fmt.Errorf("seeding lead %d: %w", i, err)
			}

			activity := model.Activity{
				LeadID:       lead.ID,
				UserID:       agent.ID,
				ActivityType: model.ActivityTypeCall,
				Title:        "Intro call",
				Duration:     intPtr(15),
				ActivityDate: createdAt.AddDate(0, 0, 1),
			}
			if i%3 == 0 {
				activity.ActivityType = model.ActivityTypeNote
				activity.Title = "Initial research"
				activity.Duration = nil
			}
			if err := tx.Create(&activity).Error; err != nil {
				return fmt.Errorf("seeding activity for lead %d: %w", lead.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Println("Demo data seeded successfully!")
	return nil
}
