package main

import (
	"flag"
	"log"
	"time"

	"wiki-chatbot-be/internal/config"
	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/model"
	"wiki-chatbot-be/pkg/database"
)

// Accounts are owned by the auth service; this only creates local fixtures.
func main() {
	withAdmin := flag.Bool("admin", true, "also seed an Admin account")
	flag.Parse()

	cfg := config.Load()
	db, err := database.Open(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	users := []model.User{
		{Username: "demo", Email: "demo@example.com", Role: entity.UserRoleUser},
	}
	if *withAdmin {
		users = append(users, model.User{Username: "admin", Email: "admin@example.com", Role: entity.UserRoleAdmin})
	}

	log.Println("Seeding users...")
	for _, u := range users {
		var existing model.User
		if err := db.Where("username = ?", u.Username).First(&existing).Error; err == nil {
			log.Printf("User '%s' already exists (id %d), skipping...", u.Username, existing.Id)
			continue
		}

		u.CreatedAt = time.Now().UTC()
		if err := db.Create(&u).Error; err != nil {
			log.Printf("Error creating user '%s': %v", u.Username, err)
		} else {
			log.Printf("Created user: %s (id %d, role %s)", u.Username, u.Id, u.Role)
		}
	}

	log.Println("User seeding completed!")
}
