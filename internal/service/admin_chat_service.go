package service

import (
	"context"
	"strings"
	"time"

	"wiki-chatbot-be/internal/dto"
	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/internal/pkg/logger"
	"wiki-chatbot-be/internal/repository/specification"
	"wiki-chatbot-be/internal/repository/unitofwork"
	"wiki-chatbot-be/pkg/events"
)

const (
	defaultAdminPageSize = 10
	maxAdminPageSize     = 100
	defaultStatsDays     = 7
	maxStatsDays         = 90
)

// sortable columns for the admin session listing, keyed by the lowercased query value
var adminSessionSortColumns = map[string]string{
	"sessionname": "display_name",
	"userid":      "owner_id",
	"updatedat":   "updated_at",
	"createdat":   "created_at",
}

type IAdminChatService interface {
	ListSessions(ctx context.Context, query *dto.AdminChatSessionQuery) (*dto.PagedResponse[dto.AdminChatSessionResponse], error)
	GetSession(ctx context.Context, sessionId int64) (*dto.AdminChatSessionResponse, error)
	DeleteSession(ctx context.Context, sessionId int64) error
	DeleteUserSessions(ctx context.Context, userId int64) (*dto.DeleteUserSessionsResponse, error)
	GetStats(ctx context.Context, days int) (*dto.AdminChatStatsResponse, error)
}

type adminChatService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewAdminChatService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, log logger.ILogger) IAdminChatService {
	return &adminChatService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     log,
	}
}

func (s *adminChatService) ListSessions(ctx context.Context, query *dto.AdminChatSessionQuery) (*dto.PagedResponse[dto.AdminChatSessionResponse], error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = defaultAdminPageSize
	}
	if pageSize > maxAdminPageSize {
		pageSize = maxAdminPageSize
	}

	var filters []specification.Specification
	if query.UserId > 0 {
		filters = append(filters, specification.ByOwnerID{OwnerID: query.UserId})
	}
	if query.StartDate != "" {
		start, err := parseAdminDate(query.StartDate, false)
		if err != nil {
			return nil, apperror.Validation("start_date", "must be RFC 3339 or YYYY-MM-DD")
		}
		filters = append(filters, specification.CreatedOnOrAfter{Time: start})
	}
	if query.EndDate != "" {
		end, err := parseAdminDate(query.EndDate, true)
		if err != nil {
			return nil, apperror.Validation("end_date", "must be RFC 3339 or YYYY-MM-DD")
		}
		filters = append(filters, specification.CreatedOnOrBefore{Time: end})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessionRepo := uow.ChatSessionRepository()

	total, err := sessionRepo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	specs := append([]specification.Specification{}, filters...)
	specs = append(specs, adminSessionOrder(query.SortBy, query.SortOrder)...)
	specs = append(specs, specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize})

	sessions, err := sessionRepo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items, err := s.decorateSessions(ctx, uow, sessions)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &dto.PagedResponse[dto.AdminChatSessionResponse]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *adminChatService) GetSession(ctx context.Context, sessionId int64) (*dto.AdminChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("chat session", sessionId)
	}

	items, err := s.decorateSessions(ctx, uow, []*entity.ChatSession{session})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *adminChatService) DeleteSession(ctx context.Context, sessionId int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return apperror.NotFound("chat session", sessionId)
	}
	if err := deleteSessionCascade(ctx, uow, session.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("AdminChatService", "Chat session deleted by admin", map[string]interface{}{
		"session_id": session.Id,
		"user_id":    session.OwnerId,
	})
	s.publish(ctx, events.ChatSessionDeleted, map[string]interface{}{
		"user_id":    session.OwnerId,
		"session_id": session.Id,
		"by_admin":   true,
	})
	return nil
}

func (s *adminChatService) DeleteUserSessions(ctx context.Context, userId int64) (*dto.DeleteUserSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user", userId)
	}

	deleted, err := deleteAllSessionsOf(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("AdminChatService", "All chat sessions of user deleted by admin", map[string]interface{}{
		"user_id": userId,
		"deleted": deleted,
	})
	return &dto.DeleteUserSessionsResponse{UserId: userId, DeletedSessions: deleted}, nil
}

func (s *adminChatService) GetStats(ctx context.Context, days int) (*dto.AdminChatStatsResponse, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	if days > maxStatsDays {
		days = maxStatsDays
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	users := uow.UserRepository()
	sessions := uow.ChatSessionRepository()
	histories := uow.ChatHistoryRepository()

	res := &dto.AdminChatStatsResponse{}
	var err error
	if res.TotalUsers, err = users.Count(ctx); err != nil {
		return nil, err
	}
	if res.TotalAdmins, err = users.Count(ctx, specification.ByRole{Role: entity.UserRoleAdmin}); err != nil {
		return nil, err
	}
	res.TotalRegularUsers = res.TotalUsers - res.TotalAdmins
	if res.TotalChatSessions, err = sessions.Count(ctx); err != nil {
		return nil, err
	}
	if res.TotalChatMessages, err = histories.Count(ctx); err != nil {
		return nil, err
	}

	// One bucket per UTC day, oldest first, today included.
	today := time.Now().UTC().Truncate(24 * time.Hour)
	res.Daily = make([]dto.DailyChatStats, 0, days+1)
	for day := today.AddDate(0, 0, -days); !day.After(today); day = day.AddDate(0, 0, 1) {
		window := []specification.Specification{
			specification.CreatedOnOrAfter{Time: day},
			specification.CreatedBefore{Time: day.AddDate(0, 0, 1)},
		}

		bucket := dto.DailyChatStats{Date: day.Format("2006-01-02")}
		if bucket.NewUsers, err = users.Count(ctx, window...); err != nil {
			return nil, err
		}
		if bucket.NewChatSessions, err = sessions.Count(ctx, window...); err != nil {
			return nil, err
		}
		if bucket.NewMessages, err = histories.Count(ctx, window...); err != nil {
			return nil, err
		}
		res.Daily = append(res.Daily, bucket)
	}

	return res, nil
}

// decorateSessions adds owner usernames and message counts.
func (s *adminChatService) decorateSessions(ctx context.Context, uow unitofwork.UnitOfWork, sessions []*entity.ChatSession) ([]dto.AdminChatSessionResponse, error) {
	items := make([]dto.AdminChatSessionResponse, 0, len(sessions))
	if len(sessions) == 0 {
		return items, nil
	}

	sessionIds := make([]int64, 0, len(sessions))
	ownerSet := make(map[int64]struct{})
	for _, session := range sessions {
		sessionIds = append(sessionIds, session.Id)
		ownerSet[session.OwnerId] = struct{}{}
	}
	ownerIds := make([]int64, 0, len(ownerSet))
	for id := range ownerSet {
		ownerIds = append(ownerIds, id)
	}

	counts, err := uow.ChatHistoryRepository().CountBySessions(ctx, sessionIds)
	if err != nil {
		return nil, err
	}
	owners, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: ownerIds})
	if err != nil {
		return nil, err
	}
	usernames := make(map[int64]string, len(owners))
	for _, owner := range owners {
		usernames[owner.Id] = owner.Username
	}

	for _, session := range sessions {
		items = append(items, dto.AdminChatSessionResponse{
			Id:           session.Id,
			UserId:       session.OwnerId,
			Username:     usernames[session.OwnerId],
			SessionId:    session.ExternalToken,
			SessionName:  session.DisplayName,
			MessageCount: counts[session.Id],
			CreatedAt:    session.CreatedAt,
			UpdatedAt:    session.UpdatedAt,
		})
	}
	return items, nil
}

func (s *adminChatService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("AdminChatService", "Failed to publish "+eventType, map[string]interface{}{"error": err.Error()})
	}
}

// adminSessionOrder defaults to newest first. Unknown columns fall back to created_at.
func adminSessionOrder(sortBy, sortOrder string) []specification.Specification {
	column, ok := adminSessionSortColumns[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		column = "created_at"
	}
	desc := !strings.EqualFold(sortOrder, "asc")
	return []specification.Specification{
		specification.OrderBy{Field: column, Desc: desc},
		specification.OrderBy{Field: "id", Desc: desc},
	}
}

// parseAdminDate accepts RFC 3339 or a bare date. A bare end date covers the whole day.
func parseAdminDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
