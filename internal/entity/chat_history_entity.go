package entity

import "time"

type ChatHistory struct {
	Id        int64
	SessionId int64
	Question  string
	Answer    string
	Metadata  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
}
