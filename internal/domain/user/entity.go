package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User represents the users table
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	AvatarURL    sql.NullString
	IsOnline     bool
	LastSeenAt   sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSession represents user_sessions issued at login
type UserSession struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	RefreshToken string
	ExpiresAt    time.Time
	RevokedAt    sql.NullTime
	CreatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

func (UserSession) TableName() string {
	return "user_sessions"
}
