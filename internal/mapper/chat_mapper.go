package mapper

import (
	"encoding/json"

	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	return &entity.ChatSession{
		Id:            s.Id,
		OwnerId:       s.OwnerId,
		ExternalToken: s.ExternalToken,
		DisplayName:   s.DisplayName,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	return &model.ChatSession{
		Id:            s.Id,
		OwnerId:       s.OwnerId,
		ExternalToken: s.ExternalToken,
		DisplayName:   s.DisplayName,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (m *ChatMapper) ChatSessionsToEntities(models []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(models))
	for i, s := range models {
		entities[i] = m.ChatSessionToEntity(s)
	}
	return entities
}

// History Mappers

func (m *ChatMapper) ChatHistoryToEntity(h *model.ChatHistory) *entity.ChatHistory {
	if h == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(h.Metadata) > 0 {
		// Malformed metadata is dropped rather than failing the read.
		_ = json.Unmarshal(h.Metadata, &metadata)
	}

	return &entity.ChatHistory{
		Id:        h.Id,
		SessionId: h.SessionId,
		Question:  h.Question,
		Answer:    h.Answer,
		Metadata:  metadata,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func (m *ChatMapper) ChatHistoryToModel(h *entity.ChatHistory) *model.ChatHistory {
	if h == nil {
		return nil
	}

	var metadata datatypes.JSON
	if len(h.Metadata) > 0 {
		if raw, err := json.Marshal(h.Metadata); err == nil {
			metadata = raw
		}
	}

	return &model.ChatHistory{
		Id:        h.Id,
		SessionId: h.SessionId,
		Question:  h.Question,
		Answer:    h.Answer,
		Metadata:  metadata,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func (m *ChatMapper) ChatHistoriesToEntities(models []*model.ChatHistory) []*entity.ChatHistory {
	entities := make([]*entity.ChatHistory, len(models))
	for i, h := range models {
		entities[i] = m.ChatHistoryToEntity(h)
	}
	return entities
}

// User Mappers

func (m *ChatMapper) UserToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:        u.Id,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
