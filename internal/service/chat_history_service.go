package service

import (
	"context"
	"strings"
	"time"

	"wiki-chatbot-be/internal/dto"
	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/internal/pkg/logger"
	"wiki-chatbot-be/internal/repository/contract"
	"wiki-chatbot-be/internal/repository/specification"
	"wiki-chatbot-be/internal/repository/unitofwork"
	"wiki-chatbot-be/pkg/events"

	"github.com/google/uuid"
)

const defaultSessionName = "New chat"

// IChatHistoryService is the owner-scoped session and history API. Sessions and
// messages of other users are reported as not found.
type IChatHistoryService interface {
	ListSessions(ctx context.Context, userId int64) ([]*dto.ChatSessionResponse, error)
	GetSession(ctx context.Context, userId int64, sessionId int64) (*dto.ChatSessionDetailResponse, error)
	CreateSession(ctx context.Context, userId int64, request *dto.CreateChatSessionRequest) (*dto.ChatSessionResponse, error)
	RenameSession(ctx context.Context, userId int64, sessionId int64, request *dto.UpdateChatSessionRequest) (*dto.ChatSessionResponse, error)
	DeleteSession(ctx context.Context, userId int64, sessionId int64) error
	ClearSessions(ctx context.Context, userId int64) (*dto.ClearSessionsResponse, error)

	ListMessages(ctx context.Context, userId int64, sessionId int64) ([]*dto.ChatHistoryResponse, error)
	CreateMessage(ctx context.Context, userId int64, request *dto.CreateChatHistoryRequest) (*dto.ChatHistoryResponse, error)
	UpdateMessage(ctx context.Context, userId int64, historyId int64, request *dto.UpdateChatHistoryRequest) (*dto.ChatHistoryResponse, error)
	DeleteMessage(ctx context.Context, userId int64, historyId int64) error
}

type chatHistoryService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewChatHistoryService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, log logger.ILogger) IChatHistoryService {
	return &chatHistoryService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     log,
	}
}

func (s *chatHistoryService) ListSessions(ctx context.Context, userId int64) ([]*dto.ChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	summaries, err := uow.ChatSessionRepository().ListSummariesByOwner(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatSessionResponse, 0, len(summaries))
	for _, summary := range summaries {
		item := toChatSessionResponse(&summary.ChatSession)
		last := summary.LastMessageAt
		item.LastMessageAt = &last
		item.MessageCount = summary.MessageCount
		res = append(res, item)
	}
	return res, nil
}

func (s *chatHistoryService) GetSession(ctx context.Context, userId int64, sessionId int64) (*dto.ChatSessionDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow.ChatSessionRepository(), userId, sessionId)
	if err != nil {
		return nil, err
	}

	histories, err := uow.ChatHistoryRepository().ListBySession(ctx, session.Id)
	if err != nil {
		return nil, err
	}

	detail := &dto.ChatSessionDetailResponse{
		ChatSessionResponse: *toChatSessionResponse(session),
		Messages:            make([]dto.ChatHistoryResponse, 0, len(histories)),
	}
	detail.MessageCount = int64(len(histories))
	last := session.CreatedAt
	for _, h := range histories {
		detail.Messages = append(detail.Messages, *toChatHistoryResponse(h))
		if h.CreatedAt.After(last) {
			last = h.CreatedAt
		}
	}
	detail.LastMessageAt = &last
	return detail, nil
}

func (s *chatHistoryService) CreateSession(ctx context.Context, userId int64, request *dto.CreateChatSessionRequest) (*dto.ChatSessionResponse, error) {
	token := strings.TrimSpace(request.SessionId)
	if token == "" {
		token = uuid.NewString()
	}
	name := strings.TrimSpace(request.SessionName)
	if name == "" {
		name = defaultSessionName
	}

	now := time.Now().UTC()
	session := &entity.ChatSession{
		OwnerId:       userId,
		ExternalToken: token,
		DisplayName:   name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	s.publish(ctx, events.ChatSessionCreated, map[string]interface{}{
		"user_id":    userId,
		"session_id": session.Id,
	})
	return toChatSessionResponse(session), nil
}

func (s *chatHistoryService) RenameSession(ctx context.Context, userId int64, sessionId int64, request *dto.UpdateChatSessionRequest) (*dto.ChatSessionResponse, error) {
	name := strings.TrimSpace(request.SessionName)
	if name == "" {
		return nil, apperror.Validation("session_name", "must not be empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()
	session, err := s.findOwnedSession(ctx, repo, userId, sessionId)
	if err != nil {
		return nil, err
	}

	session.DisplayName = name
	session.UpdatedAt = time.Now().UTC()
	if err := repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return toChatSessionResponse(session), nil
}

func (s *chatHistoryService) DeleteSession(ctx context.Context, userId int64, sessionId int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	session, err := s.findOwnedSession(ctx, uow.ChatSessionRepository(), userId, sessionId)
	if err != nil {
		return err
	}
	if err := deleteSessionCascade(ctx, uow, session.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.publish(ctx, events.ChatSessionDeleted, map[string]interface{}{
		"user_id":    userId,
		"session_id": session.Id,
	})
	return nil
}

func (s *chatHistoryService) ClearSessions(ctx context.Context, userId int64) (*dto.ClearSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	deleted, err := deleteAllSessionsOf(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("ChatHistoryService", "Cleared chat sessions", map[string]interface{}{
		"user_id": userId,
		"deleted": deleted,
	})
	return &dto.ClearSessionsResponse{DeletedSessions: deleted}, nil
}

func (s *chatHistoryService) ListMessages(ctx context.Context, userId int64, sessionId int64) ([]*dto.ChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow.ChatSessionRepository(), userId, sessionId)
	if err != nil {
		return nil, err
	}

	histories, err := uow.ChatHistoryRepository().ListBySession(ctx, session.Id)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatHistoryResponse, 0, len(histories))
	for _, h := range histories {
		res = append(res, toChatHistoryResponse(h))
	}
	return res, nil
}

func (s *chatHistoryService) CreateMessage(ctx context.Context, userId int64, request *dto.CreateChatHistoryRequest) (*dto.ChatHistoryResponse, error) {
	question := strings.TrimSpace(request.Question)
	answer := strings.TrimSpace(request.Answer)
	if question == "" {
		return nil, apperror.Validation("question", "must not be empty")
	}
	if answer == "" {
		return nil, apperror.Validation("answer", "must not be empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	session, err := s.findOwnedSession(ctx, uow.ChatSessionRepository(), userId, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	history := &entity.ChatHistory{
		SessionId: session.Id,
		Question:  question,
		Answer:    answer,
		Metadata:  request.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.ChatHistoryRepository().Create(ctx, history); err != nil {
		return nil, err
	}
	if err := uow.ChatSessionRepository().Touch(ctx, session.Id, now); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return toChatHistoryResponse(history), nil
}

func (s *chatHistoryService) UpdateMessage(ctx context.Context, userId int64, historyId int64, request *dto.UpdateChatHistoryRequest) (*dto.ChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	history, err := s.findOwnedHistory(ctx, uow, userId, historyId)
	if err != nil {
		return nil, err
	}

	if request.Question != nil {
		q := strings.TrimSpace(*request.Question)
		if q == "" {
			return nil, apperror.Validation("question", "must not be empty")
		}
		history.Question = q
	}
	if request.Answer != nil {
		a := strings.TrimSpace(*request.Answer)
		if a == "" {
			return nil, apperror.Validation("answer", "must not be empty")
		}
		history.Answer = a
	}
	history.UpdatedAt = time.Now().UTC()

	if err := uow.ChatHistoryRepository().Update(ctx, history); err != nil {
		return nil, err
	}
	return toChatHistoryResponse(history), nil
}

func (s *chatHistoryService) DeleteMessage(ctx context.Context, userId int64, historyId int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	history, err := s.findOwnedHistory(ctx, uow, userId, historyId)
	if err != nil {
		return err
	}
	return uow.ChatHistoryRepository().Delete(ctx, history.Id)
}

func (s *chatHistoryService) findOwnedSession(ctx context.Context, repo contract.ChatSessionRepository, userId, sessionId int64) (*entity.ChatSession, error) {
	session, err := repo.FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.ByOwnerID{OwnerID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("chat session", sessionId)
	}
	return session, nil
}

func (s *chatHistoryService) findOwnedHistory(ctx context.Context, uow unitofwork.UnitOfWork, userId, historyId int64) (*entity.ChatHistory, error) {
	history, err := uow.ChatHistoryRepository().FindOne(ctx, specification.ByID{ID: historyId})
	if err != nil {
		return nil, err
	}
	if history == nil {
		return nil, apperror.NotFound("chat history", historyId)
	}
	if _, err := s.findOwnedSession(ctx, uow.ChatSessionRepository(), userId, history.SessionId); err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound("chat history", historyId)
		}
		return nil, err
	}
	return history, nil
}

func (s *chatHistoryService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("ChatHistoryService", "Failed to publish "+eventType, map[string]interface{}{"error": err.Error()})
	}
}

// deleteSessionCascade removes history rows explicitly so databases created
// without ON DELETE CASCADE behave the same.
func deleteSessionCascade(ctx context.Context, uow unitofwork.UnitOfWork, sessionId int64) error {
	if err := uow.ChatHistoryRepository().DeleteAllBySession(ctx, sessionId); err != nil {
		return err
	}
	return uow.ChatSessionRepository().Delete(ctx, sessionId)
}

func deleteAllSessionsOf(ctx context.Context, uow unitofwork.UnitOfWork, userId int64) (int64, error) {
	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specification.ByOwnerID{OwnerID: userId})
	if err != nil {
		return 0, err
	}
	for _, session := range sessions {
		if err := uow.ChatHistoryRepository().DeleteAllBySession(ctx, session.Id); err != nil {
			return 0, err
		}
	}
	return uow.ChatSessionRepository().DeleteAllByOwner(ctx, userId)
}

func toChatSessionResponse(s *entity.ChatSession) *dto.ChatSessionResponse {
	return &dto.ChatSessionResponse{
		Id:          s.Id,
		SessionId:   s.ExternalToken,
		SessionName: s.DisplayName,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toChatHistoryResponse(h *entity.ChatHistory) *dto.ChatHistoryResponse {
	return &dto.ChatHistoryResponse{
		Id:            h.Id,
		ChatSessionId: h.SessionId,
		Question:      h.Question,
		Answer:        h.Answer,
		Metadata:      h.Metadata,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
}
