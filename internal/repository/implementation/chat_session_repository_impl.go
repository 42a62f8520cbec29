package implementation

import (
	"context"
	"errors"
	"sort"
	"time"

	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/mapper"
	"wiki-chatbot-be/internal/model"
	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/internal/repository/contract"
	"wiki-chatbot-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChatSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatSessionRepository(db *gorm.DB) contract.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatSessionRepositoryImpl) Create(ctx context.Context, session *entity.ChatSession) error {
	m := r.mapper.ChatSessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("chat session", "session token already exists for this user", err)
		}
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", session.OwnerId)
		}
		return err
	}
	*session = *r.mapper.ChatSessionToEntity(m)
	return nil
}

func (r *ChatSessionRepositoryImpl) Update(ctx context.Context, session *entity.ChatSession) error {
	m := r.mapper.ChatSessionToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("chat session", "session token already exists for this user", err)
		}
		return err
	}
	*session = *r.mapper.ChatSessionToEntity(m)
	return nil
}

// Touch moves updated_at forward to at, skipping the model's auto-update
// hooks. An older at leaves the column alone so out-of-order commits never
// rewind it.
func (r *ChatSessionRepositoryImpl) Touch(ctx context.Context, id int64, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("id = ? AND updated_at < ?", id, at).
		UpdateColumn("updated_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ChatSession{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperror.NotFound("chat session", id)
	}
	return nil
}

func (r *ChatSessionRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.ChatSession{}, id).Error
}

func (r *ChatSessionRepositoryImpl) DeleteAllByOwner(ctx context.Context, ownerId int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("owner_id = ?", ownerId).Delete(&model.ChatSession{})
	return result.RowsAffected, result.Error
}

func (r *ChatSessionRepositoryImpl) FindByOwnerAndToken(ctx context.Context, ownerId int64, token string) (*entity.ChatSession, error) {
	return r.FindOne(ctx,
		specification.ByOwnerID{OwnerID: ownerId},
		specification.ByExternalToken{Token: token},
	)
}

func (r *ChatSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	var m model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatSessionToEntity(&m), nil
}

func (r *ChatSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	var models []*model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChatSessionsToEntities(models), nil
}

func (r *ChatSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChatSessionRepositoryImpl) ListSummariesByOwner(ctx context.Context, ownerId int64) ([]*entity.ChatSessionSummary, error) {
	var sessions []*model.ChatSession
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerId).Find(&sessions).Error; err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return []*entity.ChatSessionSummary{}, nil
	}

	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.Id
	}

	counts, err := countHistoryBySession(r.db.WithContext(ctx), ids)
	if err != nil {
		return nil, err
	}

	// Newest row per session. Selecting whole rows keeps created_at typed on
	// drivers that return MAX() results as text.
	var latest []*model.ChatHistory
	err = r.db.WithContext(ctx).
		Select("id", "session_id", "created_at").
		Where("session_id IN ?", ids).
		Where(`NOT EXISTS (
			SELECT 1 FROM chat_history newer
			WHERE newer.session_id = chat_history.session_id
			AND (newer.created_at > chat_history.created_at
				OR (newer.created_at = chat_history.created_at AND newer.id > chat_history.id))
		)`).
		Find(&latest).Error
	if err != nil {
		return nil, err
	}

	lastBySession := make(map[int64]time.Time, len(latest))
	for _, h := range latest {
		lastBySession[h.SessionId] = h.CreatedAt
	}

	summaries := make([]*entity.ChatSessionSummary, len(sessions))
	for i, s := range sessions {
		last, ok := lastBySession[s.Id]
		if !ok {
			last = s.CreatedAt
		}
		summaries[i] = &entity.ChatSessionSummary{
			ChatSession:   *r.mapper.ChatSessionToEntity(s),
			LastMessageAt: last,
			MessageCount:  counts[s.Id],
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].LastMessageAt.Equal(summaries[j].LastMessageAt) {
			return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
		}
		return summaries[i].Id > summaries[j].Id
	})

	return summaries, nil
}
