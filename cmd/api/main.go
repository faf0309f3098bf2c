package main

import (
	"log"

	"crm_backend/internal/controller"
	"crm_backend/internal/model"
	"crm_backend/pkg/config"
	"crm_backend/pkg/database"
	"crm_backend/pkg/seed"
	"crm_backend/pkg/utils/jwt"
)

func main() {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	jwt.Init(cfg.JWT.Secret, cfg.JWT.AccessMinutes)

	database.InitDB(cfg.Database.URL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.Lead{},
		&model.Activity{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	if err := seed.EnsureAdmin(database.GetDB(), cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal("Could not bootstrap admin user:", err)
	}

	if cfg.SeedDemo {
		if err := seed.SeedDemoData(database.GetDB()); err != nil {
			log.Printf("Demo seed warning: %v", err)
		}
	}

	app := controller.NewApp()

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
