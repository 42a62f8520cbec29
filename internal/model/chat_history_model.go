package model

import (
	"time"

	"gorm.io/datatypes"
)

type ChatHistory struct {
	Id        int64          `gorm:"primaryKey;autoIncrement"`
	SessionId int64          `gorm:"not null;index"`
	Question  string         `gorm:"type:text;not null"`
	Answer    string         `gorm:"type:text;not null"`
	Metadata  datatypes.JSON // RAG answer metadata, nullable
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`

	Session *ChatSession `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
}

func (ChatHistory) TableName() string {
	return "chat_history"
}

// All returns every model owned by this service, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&ChatSession{},
		&ChatHistory{},
	}
}
