package dto

import "time"

type ChatSessionResponse struct {
	Id            int64      `json:"id"`
	SessionId     string     `json:"session_id"`
	SessionName   string     `json:"session_name"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	MessageCount  int64      `json:"message_count"`
}

type ChatSessionDetailResponse struct {
	ChatSessionResponse
	Messages []ChatHistoryResponse `json:"messages"`
}

// CreateChatSessionRequest lets clients pre-register a session token.
// A missing token is generated server side.
type CreateChatSessionRequest struct {
	SessionId   string `json:"session_id" validate:"omitempty,max=100"`
	SessionName string `json:"session_name" validate:"omitempty,max=200"`
}

type UpdateChatSessionRequest struct {
	SessionName string `json:"session_name" validate:"required,max=200"`
}

type ChatHistoryResponse struct {
	Id            int64                  `json:"id"`
	ChatSessionId int64                  `json:"chat_session_id"`
	Question      string                 `json:"question"`
	Answer        string                 `json:"answer"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type CreateChatHistoryRequest struct {
	ChatSessionId int64                  `json:"chat_session_id" validate:"required,gt=0"`
	Question      string                 `json:"question" validate:"required"`
	Answer        string                 `json:"answer" validate:"required"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type UpdateChatHistoryRequest struct {
	Question *string `json:"question" validate:"omitempty,min=1"`
	Answer   *string `json:"answer" validate:"omitempty,min=1"`
}

type ClearSessionsResponse struct {
	DeletedSessions int64 `json:"deleted_sessions"`
}
