package dto

type QuestionRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
	Verbose  bool   `json:"verbose"`
}

type QuestionResponse struct {
	Question      string                 `json:"question"`
	Answer        string                 `json:"answer"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	SessionId     string                 `json:"session_id"`
	ChatSessionId *int64                 `json:"chat_session_id,omitempty"`
	HistoryId     *int64                 `json:"history_id,omitempty"`
	HistorySaved  bool                   `json:"history_saved"`
}
