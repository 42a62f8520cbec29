// Package testdb opens throwaway SQLite databases with the chat schema migrated.
package testdb

import (
	"testing"
	"time"

	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/model"
	"wiki-chatbot-be/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// New returns an isolated in-memory database that lives for the duration of t.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewSQLiteDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedUser inserts an account row and returns its id.
func SeedUser(t testing.TB, db *gorm.DB, username, role string) int64 {
	t.Helper()

	if role == "" {
		role = entity.UserRoleUser
	}
	u := &model.User{
		Username:  username,
		Email:     username + "@example.com",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u.Id
}
