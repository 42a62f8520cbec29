package main

import (
	"log"

	"wiki-chatbot-be/internal/config"
	"wiki-chatbot-be/internal/model"
	"wiki-chatbot-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Printf("Running AutoMigrate for %d tables (driver: %s)...", len(model.All()), cfg.Database.Driver)
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// AutoMigrate does not add the updated_at index used by the session listing.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_chat_sessions_owner_updated ON chat_sessions (owner_id, updated_at DESC)`).Error; err != nil {
		log.Printf("Warn: Failed to create idx_chat_sessions_owner_updated: %v", err)
	}

	log.Println("Migration completed successfully!")
}
