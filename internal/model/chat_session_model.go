package model

import "time"

type ChatSession struct {
	Id            int64     `gorm:"primaryKey;autoIncrement"`
	OwnerId       int64     `gorm:"not null;uniqueIndex:idx_chat_sessions_owner_token,priority:1"`
	ExternalToken string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_chat_sessions_owner_token,priority:2"`
	DisplayName   string    `gorm:"type:varchar(200);not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`

	Owner *User `gorm:"foreignKey:OwnerId;constraint:OnDelete:CASCADE"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
