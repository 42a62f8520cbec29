package service

import (
	"context"
	"testing"
	"time"

	"wiki-chatbot-be/internal/dto"
	"wiki-chatbot-be/internal/entity"
	"wiki-chatbot-be/internal/model"
	"wiki-chatbot-be/internal/pkg/apperror"
	"wiki-chatbot-be/internal/pkg/logger"
	"wiki-chatbot-be/internal/pkg/testdb"
	"wiki-chatbot-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *chatFixture) adminService() IAdminChatService {
	return NewAdminChatService(f.factory, f.publisher, logger.NewNopLogger())
}

// seedSession creates a session for owner and backdates it to createdAt.
func (f *chatFixture) seedSession(t *testing.T, owner *entity.Identity, token, name string, createdAt time.Time, messages int) int64 {
	t.Helper()
	ctx := context.Background()
	history := f.historyService()

	session, err := history.CreateSession(ctx, owner.UserId, &dto.CreateChatSessionRequest{SessionId: token, SessionName: name})
	require.NoError(t, err)
	for i := 0; i < messages; i++ {
		_, err := history.CreateMessage(ctx, owner.UserId, &dto.CreateChatHistoryRequest{ChatSessionId: session.Id, Question: "q", Answer: "a"})
		require.NoError(t, err)
	}

	require.NoError(t, f.db.Model(&model.ChatSession{}).Where("id = ?", session.Id).
		UpdateColumns(map[string]interface{}{"created_at": createdAt, "updated_at": createdAt}).Error)
	return session.Id
}

func TestAdminListSessionsPagesNewestFirst(t *testing.T) {
	f := newChatFixture(t)
	svc := f.adminService()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		f.seedSession(t, f.alice, string(rune('a'+i)), "alice chat", base.AddDate(0, 0, i), 0)
	}
	f.seedSession(t, f.bob, "b1", "bob chat", base.AddDate(0, 0, 10), 2)

	page, err := svc.ListSessions(context.Background(), &dto.AdminChatSessionQuery{Page: 1, PageSize: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 4)
	assert.Equal(t, "b1", page.Items[0].SessionId)
	assert.Equal(t, "bob", page.Items[0].Username)
	assert.Equal(t, int64(2), page.Items[0].MessageCount)
	assert.Equal(t, "e", page.Items[1].SessionId)

	second, err := svc.ListSessions(context.Background(), &dto.AdminChatSessionQuery{Page: 2, PageSize: 4})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "a", second.Items[1].SessionId)
}

func TestAdminListSessionsFilters(t *testing.T) {
	f := newChatFixture(t)
	svc := f.adminService()
	ctx := context.Background()

	f.seedSession(t, f.alice, "early", "x", time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), 0)
	f.seedSession(t, f.alice, "mid", "x", time.Date(2025, 1, 20, 23, 30, 0, 0, time.UTC), 0)
	f.seedSession(t, f.bob, "late", "x", time.Date(2025, 2, 5, 8, 0, 0, 0, time.UTC), 0)

	byUser, err := svc.ListSessions(ctx, &dto.AdminChatSessionQuery{UserId: f.bob.UserId})
	require.NoError(t, err)
	require.Len(t, byUser.Items, 1)
	assert.Equal(t, "late", byUser.Items[0].SessionId)

	// A bare end date includes the whole day.
	byDate, err := svc.ListSessions(ctx, &dto.AdminChatSessionQuery{StartDate: "2025-01-15", EndDate: "2025-01-20"})
	require.NoError(t, err)
	require.Len(t, byDate.Items, 1)
	assert.Equal(t, "mid", byDate.Items[0].SessionId)

	_, err = svc.ListSessions(ctx, &dto.AdminChatSessionQuery{StartDate: "yesterday"})
	assert.True(t, apperror.IsValidation(err))
}

func TestAdminListSessionsSorting(t *testing.T) {
	f := newChatFixture(t)
	svc := f.adminService()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	f.seedSession(t, f.alice, "1", "Beta", base, 0)
	f.seedSession(t, f.alice, "2", "Alpha", base.Add(time.Hour), 0)
	f.seedSession(t, f.alice, "3", "Gamma", base.Add(2*time.Hour), 0)

	page, err := svc.ListSessions(context.Background(), &dto.AdminChatSessionQuery{SortBy: "sessionName", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, []string{page.Items[0].SessionName, page.Items[1].SessionName, page.Items[2].SessionName})

	// Unknown columns fall back to creation time.
	page, err = svc.ListSessions(context.Background(), &dto.AdminChatSessionQuery{SortBy: "password", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "1", page.Items[0].SessionId)
}

func TestAdminPageSizeIsCapped(t *testing.T) {
	f := newChatFixture(t)

	page, err := f.adminService().ListSessions(context.Background(), &dto.AdminChatSessionQuery{Page: -1, PageSize: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalPages)
}

func TestAdminGetAndDeleteSession(t *testing.T) {
	f := newChatFixture(t)
	svc := f.adminService()
	ctx := context.Background()

	id := f.seedSession(t, f.bob, "t", "bob's", time.Now().UTC(), 3)

	got, err := svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.bob.UserId, got.UserId)
	assert.Equal(t, int64(3), got.MessageCount)

	require.NoError(t, svc.DeleteSession(ctx, id))
	assert.Zero(t, f.countHistory(t))
	assert.Contains(t, f.publisher.types(), events.ChatSessionDeleted)

	_, err = svc.GetSession(ctx, id)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(svc.DeleteSession(ctx, id)))
}

func TestAdminDeleteUserSessions(t *testing.T) {
	f := newChatFixture(t)
	svc := f.adminService()
	ctx := context.Background()

	f.seedSession(t, f.alice, "1", "x", time.Now().UTC(), 1)
	f.seedSession(t, f.alice, "2", "x", time.Now().UTC(), 1)
	f.seedSession(t, f.bob, "1", "x", time.Now().UTC(), 1)

	res, err := svc.DeleteUserSessions(ctx, f.alice.UserId)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DeletedSessions)
	assert.Zero(t, f.countSessions(t, f.alice.UserId))
	assert.Equal(t, int64(1), f.countHistory(t))

	_, err = svc.DeleteUserSessions(ctx, 999999)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAdminStats(t *testing.T) {
	f := newChatFixture(t)
	testdb.SeedUser(t, f.db, "root", entity.UserRoleAdmin)
	svc := f.adminService()

	f.seedSession(t, f.alice, "today", "x", time.Now().UTC(), 2)
	f.seedSession(t, f.bob, "old", "x", time.Now().UTC().AddDate(0, 0, -30), 1)

	stats, err := svc.GetStats(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalAdmins)
	assert.Equal(t, int64(2), stats.TotalRegularUsers)
	assert.Equal(t, int64(2), stats.TotalChatSessions)
	assert.Equal(t, int64(3), stats.TotalChatMessages)

	require.Len(t, stats.Daily, 8)
	today := stats.Daily[len(stats.Daily)-1]
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), today.Date)
	assert.Equal(t, int64(1), today.NewChatSessions)
	assert.Equal(t, int64(3), today.NewUsers)
	// Messages keep their real timestamps even when the session is backdated.
	assert.Equal(t, int64(3), today.NewMessages)
}

func TestAdminStatsDaysCapped(t *testing.T) {
	f := newChatFixture(t)

	stats, err := f.adminService().GetStats(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, stats.Daily, 91)
}
