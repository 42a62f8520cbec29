package contract

import (
	"context"
	"time"

	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/repository/specification"
)

type ChatSessionRepository interface {
	// Create returns apperror.ConflictError when (owner, token) already exists.
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	Touch(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	DeleteAllByOwner(ctx context.Context, ownerId int64) (int64, error)
	FindByOwnerAndToken(ctx context.Context, ownerId int64, token string) (*entity.ChatSession, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// ListSummariesByOwner orders by last message time, newest first, then id descending.
	ListSummariesByOwner(ctx context.Context, ownerId int64) ([]*entity.ChatSessionSummary, error)
}
