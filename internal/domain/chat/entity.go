package chat

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Chat kinds
const (
	KindDirect = "DIRECT"
	KindJob    = "JOB"
)

// Chat represents the chats table
type Chat struct {
	ID                uuid.UUID
	Kind              string
	JobID             uuid.NullUUID
	LastMessageText   sql.NullString
	LastMessageSender uuid.NullUUID
	LastMessageAt     sql.NullTime
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Participant represents chat_participants; unread_count is the
// per-viewer counter reset by mark-as-read.
type Participant struct {
	ChatID      uuid.UUID
	UserID      uuid.UUID
	UnreadCount int
	MutedUntil  sql.NullTime
	JoinedAt    time.Time
}

func (Chat) TableName() string {
	return "chats"
}

func (Participant) TableName() string {
	return "chat_participants"
}
