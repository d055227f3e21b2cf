package main

import (
	"fmt"
	"log"
	"time"

	"gamevault/backend/internal/activity"
	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/cache"
	"gamevault/backend/internal/config"
	"gamevault/backend/internal/database"
	"gamevault/backend/internal/handler"
	"gamevault/backend/internal/service"
	"gamevault/backend/pkg/jwt"

	// Swagger imports
	_ "gamevault/backend/docs" // This is important for swag to find the generated docs
)

func init() {
	config.LoadConfig()
}

// @title           GameVault API
// @version         1.0
// @description     Game catalog with user reviews and an admin console.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.AppConfig

	// Connect to the database
	database.Connect(cfg.DBDriver, cfg.DatabaseURL)
	db := database.DB

	issuer := jwt.NewIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	catalogCache := cache.New(time.Duration(cfg.CacheTTLSeconds) * time.Second)

	h := handler.New(db,
		service.NewAuthService(db, issuer),
		service.NewGameService(db, catalogCache),
		service.NewReviewService(db, catalogCache, cfg.RecentReviewsLimit),
		service.NewStatsService(db),
	)
	router := handler.NewRouter(h, auth.NewAuthenticator(issuer, db), cfg.APIPrefix, activity.Middleware(db))

	fmt.Printf("Server is running on :%s\n", cfg.Port)
	fmt.Printf("Swagger UI is available at http://localhost:%s/swagger/index.html\n", cfg.Port)
	log.Fatal(router.Run(":" + cfg.Port))
}
