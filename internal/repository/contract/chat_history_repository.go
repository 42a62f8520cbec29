package contract

import (
	"context"

	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/repository/specification"
)

type ChatHistoryRepository interface {
	// Create returns apperror.NotFoundError when the referenced session does not exist.
	Create(ctx context.Context, history *entity.ChatHistory) error
	Update(ctx context.Context, history *entity.ChatHistory) error
	Delete(ctx context.Context, id int64) error
	DeleteAllBySession(ctx context.Context, sessionId int64) error
	ListBySession(ctx context.Context, sessionId int64) ([]*entity.ChatHistory, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatHistory, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountBySessions(ctx context.Context, sessionIds []int64) (map[int64]int64, error)
}
