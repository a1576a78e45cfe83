package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification represents the notifications table; one row per
// recipient per new foreign message.
type Notification struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ChatID     uuid.UUID
	SenderID   uuid.UUID
	SenderName string
	Body       string
	IsRead     bool
	CreatedAt  time.Time
}

func (Notification) TableName() string {
	return "notifications"
}
