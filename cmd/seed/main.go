package main

import (
	"context"
	"log"

	"gamevault/backend/internal/config"
	"gamevault/backend/internal/database"
	"gamevault/backend/internal/seed"
)

func main() {
	// The seeder signs no tokens, so a missing JWT_SECRET is fine here.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load configuration: %v", err)
	}

	database.Connect(cfg.DBDriver, cfg.DatabaseURL)

	res, err := seed.Run(context.Background(), database.DB, seed.Admin{
		Name:     cfg.SeedAdminName,
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	switch {
	case res.AdminCreated:
		log.Printf("Admin %s created.", cfg.SeedAdminEmail)
	case res.AdminPromoted:
		log.Printf("User %s promoted to admin.", cfg.SeedAdminEmail)
	default:
		log.Printf("Admin %s already present.", cfg.SeedAdminEmail)
	}
	log.Printf("%d starter games created.", res.GamesCreated)
}
