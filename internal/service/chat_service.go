package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"wiki-chatbot-be/internal/dto"
	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/internal/pkg/logger"
	"wiki-chatbot-be/internal/repository/unitofwork"
	"wiki-chatbot-be/pkg/events"
	"wiki-chatbot-be/pkg/rag"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	MaxSessionTokenLength = 100

	displayNameLimit  = 30
	displayNamePrefix = 27
)

// IChatService answers questions through the RAG service and records the
// exchange in the caller's session.
type IChatService interface {
	Ask(ctx context.Context, identity *entity.Identity, sessionToken string, request *dto.QuestionRequest) (*AskResult, error)
}

// AskResult carries the answer plus what happened to its persistence.
type AskResult struct {
	Question     string
	Answer       string
	Metadata     map[string]interface{}
	SessionToken string

	// Session is nil for anonymous callers or when it could not be resolved.
	Session *entity.ChatSession
	// History is nil unless the exchange was stored.
	History *entity.ChatHistory
	// PersistErr is set when an identified caller got an answer that could not be stored.
	PersistErr error
}

func (r *AskResult) HistorySaved() bool {
	return r.History != nil
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    rag.Gateway
	publisher  events.Publisher
	logger     logger.ILogger
	tracer     trace.Tracer
}

// NewChatService wires the orchestrator. publisher may be nil.
func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	gateway rag.Gateway,
	publisher events.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		gateway:    gateway,
		publisher:  publisher,
		logger:     log,
		tracer:     otel.Tracer("wiki-chatbot-be/internal/service"),
	}
}

// DisplayNameFromQuestion shortens long questions to 27 characters plus an ellipsis.
func DisplayNameFromQuestion(question string) string {
	if utf8.RuneCountInString(question) <= displayNameLimit {
		return question
	}
	runes := []rune(question)
	return string(runes[:displayNamePrefix]) + "..."
}

func (s *chatService) Ask(ctx context.Context, identity *entity.Identity, sessionToken string, request *dto.QuestionRequest) (*AskResult, error) {
	ctx, span := s.tracer.Start(ctx, "ChatService.Ask")
	defer span.End()

	question := strings.TrimSpace(request.Question)
	if question == "" {
		return nil, apperror.Validation("question", "must not be empty")
	}

	token := strings.TrimSpace(sessionToken)
	if token == "" {
		token = uuid.NewString()
	}
	if len(token) > MaxSessionTokenLength {
		return nil, apperror.Validation("session_id", fmt.Sprintf("must be at most %d characters", MaxSessionTokenLength))
	}

	span.SetAttributes(attribute.Bool("chat.anonymous", identity == nil))

	var (
		session    *entity.ChatSession
		sessionErr error
		answer     *rag.ChatResponse
	)

	// Retrieval is not session scoped, so the session lookup runs alongside generation.
	g, gctx := errgroup.WithContext(ctx)
	if identity != nil {
		storeCtx := context.WithoutCancel(gctx)
		g.Go(func() error {
			session, sessionErr = s.resolveSession(storeCtx, identity.UserId, token, question)
			return nil
		})
	}
	g.Go(func() error {
		resp, err := s.generate(gctx, question, request)
		if err != nil {
			return err
		}
		answer = resp
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "answer generation failed")
		s.logger.Error("ChatService", "Answer generation failed", map[string]interface{}{
			"error":         err.Error(),
			"session_token": token,
		})
		s.publish(ctx, events.ChatUpstreamFailed, map[string]interface{}{
			"session_token": token,
			"error":         err.Error(),
		})
		return nil, err
	}

	result := &AskResult{
		Question:     question,
		Answer:       answer.Answer,
		Metadata:     answer.Metadata,
		SessionToken: token,
	}

	if identity == nil {
		return result, nil
	}

	storeCtx := context.WithoutCancel(ctx)
	if sessionErr != nil {
		result.PersistErr = fmt.Errorf("resolve session: %w", sessionErr)
		s.reportPersistFailure(storeCtx, identity, token, result.PersistErr)
		return result, nil
	}
	result.Session = session

	history, err := s.saveExchange(storeCtx, session, question, answer)
	if err != nil {
		result.PersistErr = fmt.Errorf("save history: %w", err)
		s.reportPersistFailure(storeCtx, identity, token, result.PersistErr)
		return result, nil
	}
	result.History = history

	span.SetAttributes(attribute.Bool("chat.history_saved", true))
	s.publish(storeCtx, events.ChatHistorySaved, map[string]interface{}{
		"user_id":    identity.UserId,
		"session_id": session.Id,
		"history_id": history.Id,
	})

	return result, nil
}

func (s *chatService) generate(ctx context.Context, question string, request *dto.QuestionRequest) (*rag.ChatResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ChatService.generate")
	defer span.End()

	resp, err := s.gateway.Chat(ctx, rag.ChatRequest{
		Question: question,
		Verbose:  request.Verbose,
	})
	if err != nil {
		if !apperror.IsUpstreamUnavailable(err) {
			err = &apperror.UpstreamUnavailableError{Operation: "chat", Message: err.Error(), Err: err}
		}
		return nil, err
	}
	if strings.TrimSpace(resp.Answer) == "" {
		return nil, &apperror.UpstreamUnavailableError{Operation: "chat", Message: "empty answer"}
	}
	return resp, nil
}

// resolveSession finds or creates the (owner, token) session. A concurrent
// create for the same pair surfaces as a conflict and is resolved by re-reading.
func (s *chatService) resolveSession(ctx context.Context, ownerId int64, token, question string) (*entity.ChatSession, error) {
	ctx, span := s.tracer.Start(ctx, "ChatService.resolveSession")
	defer span.End()

	repo := s.uowFactory.NewUnitOfWork(ctx).ChatSessionRepository()

	existing, err := repo.FindByOwnerAndToken(ctx, ownerId, token)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	session := &entity.ChatSession{
		OwnerId:       ownerId,
		ExternalToken: token,
		DisplayName:   DisplayNameFromQuestion(question),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.Create(ctx, session); err != nil {
		if apperror.IsConflict(err) {
			winner, findErr := repo.FindByOwnerAndToken(ctx, ownerId, token)
			if findErr != nil {
				return nil, findErr
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, err
	}

	s.publish(ctx, events.ChatSessionCreated, map[string]interface{}{
		"user_id":    ownerId,
		"session_id": session.Id,
	})
	return session, nil
}

// saveExchange stores the exchange and bumps the session in one transaction.
func (s *chatService) saveExchange(ctx context.Context, session *entity.ChatSession, question string, answer *rag.ChatResponse) (*entity.ChatHistory, error) {
	ctx, span := s.tracer.Start(ctx, "ChatService.saveExchange")
	defer span.End()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now().UTC()
	history := &entity.ChatHistory{
		SessionId: session.Id,
		Question:  question,
		Answer:    answer.Answer,
		Metadata:  answer.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.ChatHistoryRepository().Create(ctx, history); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := uow.ChatSessionRepository().Touch(ctx, session.Id, now); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	session.UpdatedAt = now
	return history, nil
}

func (s *chatService) reportPersistFailure(ctx context.Context, identity *entity.Identity, token string, err error) {
	s.logger.Error("ChatService", "Answer delivered but history was not saved", map[string]interface{}{
		"error":         err.Error(),
		"user_id":       identity.UserId,
		"session_token": token,
	})
	s.publish(ctx, events.ChatHistorySaveFailed, map[string]interface{}{
		"user_id":       identity.UserId,
		"session_token": token,
		"error":         err.Error(),
	})
}

func (s *chatService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("ChatService", "Failed to publish "+eventType, map[string]interface{}{"error": err.Error()})
	}
}
