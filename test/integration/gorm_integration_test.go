package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/model"
	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/internal/repository/specification"
	"wiki-chatbot-be/internal/repository/unitofwork"
	"wiki-chatbot-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err, "Failed to connect to DB")
	require.NoError(t, gormDB.AutoMigrate(model.All()...))
	return gormDB
}

func TestGormConnection(t *testing.T) {
	gormDB := openPostgres(t)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())

	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(context.Background())
	_, err = uow.UserRepository().Count(context.Background())
	assert.NoError(t, err)
	_, err = uow.ChatSessionRepository().Count(context.Background())
	assert.NoError(t, err)
	_, err = uow.ChatHistoryRepository().Count(context.Background())
	assert.NoError(t, err)
}

func TestChatPersistenceOnPostgres(t *testing.T) {
	gormDB := openPostgres(t)
	ctx := context.Background()
	factory := unitofwork.NewRepositoryFactory(gormDB)

	user := &model.User{
		Username:  "it-" + uuid.NewString()[:8],
		Email:     "test-integration-" + uuid.NewString() + "@example.com",
		Role:      entity.UserRoleUser,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, gormDB.Create(user).Error)
	t.Cleanup(func() {
		// cascades to sessions and history
		gormDB.Delete(&model.User{}, user.Id)
	})

	sessions := factory.NewUnitOfWork(ctx).ChatSessionRepository()
	now := time.Now().UTC()
	session := &entity.ChatSession{OwnerId: user.Id, ExternalToken: "it-token", DisplayName: "Integration", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, sessions.Create(ctx, session))

	t.Run("duplicate token is a conflict", func(t *testing.T) {
		dup := &entity.ChatSession{OwnerId: user.Id, ExternalToken: "it-token", DisplayName: "Again", CreatedAt: now, UpdatedAt: now}
		assert.True(t, apperror.IsConflict(sessions.Create(ctx, dup)))
	})

	t.Run("unknown owner is not found", func(t *testing.T) {
		orphan := &entity.ChatSession{OwnerId: -1, ExternalToken: "orphan", DisplayName: "x", CreatedAt: now, UpdatedAt: now}
		assert.True(t, apperror.IsNotFound(sessions.Create(ctx, orphan)))
	})

	t.Run("history insert and touch commit together", func(t *testing.T) {
		uow := factory.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		history := &entity.ChatHistory{
			SessionId: session.Id,
			Question:  "Who discovered penicillin?",
			Answer:    "Alexander Fleming.",
			Metadata:  map[string]interface{}{"sources": []interface{}{"fleming.md"}},
			CreatedAt: time.Now().UTC(),
		}
		history.UpdatedAt = history.CreatedAt
		require.NoError(t, uow.ChatHistoryRepository().Create(ctx, history))
		require.NoError(t, uow.ChatSessionRepository().Touch(ctx, session.Id, history.CreatedAt))
		require.NoError(t, uow.Commit())

		found, err := sessions.FindOne(ctx, specification.ByID{ID: session.Id})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.False(t, found.UpdatedAt.Before(history.CreatedAt.Truncate(time.Microsecond)))

		summaries, err := sessions.ListSummariesByOwner(ctx, user.Id)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, int64(1), summaries[0].MessageCount)
	})
}
