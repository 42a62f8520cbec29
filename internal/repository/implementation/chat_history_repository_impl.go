package implementation

import (
	"context"
	"errors"

	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/mapper"
	"wiki-chatbot-be/internal/model"
	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/internal/repository/contract"
	"wiki-chatbot-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChatHistoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatHistoryRepository(db *gorm.DB) contract.ChatHistoryRepository {
	return &ChatHistoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatHistoryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatHistoryRepositoryImpl) Create(ctx context.Context, history *entity.ChatHistory) error {
	var sessions int64
	if err := r.db.WithContext(ctx).Model(&model.ChatSession{}).Where("id = ?", history.SessionId).Count(&sessions).Error; err != nil {
		return err
	}
	if sessions == 0 {
		return apperror.NotFound("chat session", history.SessionId)
	}

	m := r.mapper.ChatHistoryToModel(history)
	if err := r.db.WithContext(ctx).Omit("Session").Create(m).Error; err != nil {
		// The session can vanish between the check and the insert.
		if isForeignKeyViolation(err) {
			return apperror.NotFound("chat session", history.SessionId)
		}
		return err
	}
	*history = *r.mapper.ChatHistoryToEntity(m)
	return nil
}

func (r *ChatHistoryRepositoryImpl) Update(ctx context.Context, history *entity.ChatHistory) error {
	m := r.mapper.ChatHistoryToModel(history)
	if err := r.db.WithContext(ctx).Omit("Session").Save(m).Error; err != nil {
		return err
	}
	*history = *r.mapper.ChatHistoryToEntity(m)
	return nil
}

func (r *ChatHistoryRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.ChatHistory{}, id).Error
}

func (r *ChatHistoryRepositoryImpl) DeleteAllBySession(ctx context.Context, sessionId int64) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.ChatHistory{}).Error
}

func (r *ChatHistoryRepositoryImpl) ListBySession(ctx context.Context, sessionId int64) ([]*entity.ChatHistory, error) {
	var models []*model.ChatHistory
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ChatHistoriesToEntities(models), nil
}

func (r *ChatHistoryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatHistory, error) {
	var m model.ChatHistory
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatHistoryToEntity(&m), nil
}

func (r *ChatHistoryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatHistory{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChatHistoryRepositoryImpl) CountBySessions(ctx context.Context, sessionIds []int64) (map[int64]int64, error) {
	if len(sessionIds) == 0 {
		return map[int64]int64{}, nil
	}
	return countHistoryBySession(r.db.WithContext(ctx), sessionIds)
}

type sessionMessageCount struct {
	SessionId    int64
	MessageCount int64
}

func countHistoryBySession(db *gorm.DB, sessionIds []int64) (map[int64]int64, error) {
	var rows []sessionMessageCount
	err := db.Model(&model.ChatHistory{}).
		Select("session_id, COUNT(*) AS message_count").
		Where("session_id IN ?", sessionIds).
		Group("session_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.SessionId] = row.MessageCount
	}
	return counts, nil
}
