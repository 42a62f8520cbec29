package contract

import (
	"context"

	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/repository/specification"
)

// UserRepository is read-only: accounts are managed by the auth service.
type UserRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
