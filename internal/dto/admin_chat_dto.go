package dto

import "time"

// AdminChatSessionQuery dates accept RFC 3339 or YYYY-MM-DD.
type AdminChatSessionQuery struct {
	Page      int    `query:"page"`
	PageSize  int    `query:"page_size"`
	UserId    int64  `query:"user_id"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	SortBy    string `query:"sort_by"`
	SortOrder string `query:"sort_order"`
}

type AdminChatSessionResponse struct {
	Id           int64     `json:"id"`
	UserId       int64     `json:"user_id"`
	Username     string    `json:"username"`
	SessionId    string    `json:"session_id"`
	SessionName  string    `json:"session_name"`
	MessageCount int64     `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PagedResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

type AdminChatStatsResponse struct {
	TotalUsers        int64            `json:"total_users"`
	TotalAdmins       int64            `json:"total_admins"`
	TotalRegularUsers int64            `json:"total_regular_users"`
	TotalChatSessions int64            `json:"total_chat_sessions"`
	TotalChatMessages int64            `json:"total_chat_messages"`
	Daily             []DailyChatStats `json:"daily"`
}

type DailyChatStats struct {
	Date            string `json:"date"`
	NewUsers        int64  `json:"new_users"`
	NewChatSessions int64  `json:"new_chat_sessions"`
	NewMessages     int64  `json:"new_messages"`
}

type DeleteUserSessionsResponse struct {
	UserId          int64 `json:"user_id"`
	DeletedSessions int64 `json:"deleted_sessions"`
}
