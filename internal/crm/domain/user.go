package domain

import "time"

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserInactive
}

// User is the application identity linked 1:1 to an external auth identity.
// Users are deactivated, never hard-deleted.
type User struct {
	ID           string
	AuthID       string
	Email        string
	Name         string
	AvatarURL    string
	GroupID      *string
	Status       UserStatus
	LastAccessAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Active() bool { return u.Status == UserActive }

// UserFilter narrows a user listing.
type UserFilter struct {
	Search  string
	GroupID string
	Status  UserStatus
	Limit   int
	Offset  int
}
