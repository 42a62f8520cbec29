package entity

import "time"

const (
	UserRoleUser  = "User"
	UserRoleAdmin = "Admin"
)

type User struct {
	Id        int64
	Username  string
	Email     string
	Role      string
	CreatedAt time.Time
}

// Identity is the caller resolved from a verified bearer token.
// A nil *Identity means the caller is anonymous.
type Identity struct {
	UserId int64
	Role   string
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == UserRoleAdmin
}
