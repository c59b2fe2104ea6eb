package main

import (
	"log"

	api "resurface-backend/cmd/api"
	"resurface-backend/internal/app"
	"resurface-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Wire the application (database, migrations, repositories, use cases)
	application, err := app.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}

	handler := api.NewHandler(application)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
