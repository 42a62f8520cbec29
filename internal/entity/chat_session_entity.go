package entity

import "time"

type ChatSession struct {
	Id            int64
	OwnerId       int64
	ExternalToken string
	DisplayName   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChatSessionSummary is a session plus the aggregates shown in session listings.
type ChatSessionSummary struct {
	ChatSession
	LastMessageAt time.Time
	MessageCount  int64
}
