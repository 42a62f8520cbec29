package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByOwnerID struct {
	OwnerID int64
}

func (s ByOwnerID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.OwnerID)
}

// ByExternalToken matches the caller supplied session token exactly.
type ByExternalToken struct {
	Token string
}

func (s ByExternalToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("external_token = ?", s.Token)
}

type BySessionID struct {
	SessionID int64
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type CreatedOnOrAfter struct {
	Time time.Time
}

func (s CreatedOnOrAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Time)
}

type CreatedOnOrBefore struct {
	Time time.Time
}

func (s CreatedOnOrBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at <= ?", s.Time)
}

// CreatedBefore is exclusive, for half-open day buckets.
type CreatedBefore struct {
	Time time.Time
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at < ?", s.Time)
}
