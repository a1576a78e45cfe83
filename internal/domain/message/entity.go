package message

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Message types
const (
	TypeText  = "TEXT"
	TypeImage = "IMAGE"
	TypeFile  = "FILE"
)

// Delivery states
const (
	StatusSent      = "SENT"
	StatusDelivered = "DELIVERED"
	StatusRead      = "READ"
)

// Message represents the messages table
type Message struct {
	ID              uuid.UUID
	ChatID          uuid.UUID
	SenderID        uuid.UUID
	ClientMessageID sql.NullString
	Type            string
	Text            sql.NullString
	AttachmentURL   sql.NullString
	AttachmentName  sql.NullString
	Status          string
	CreatedAt       time.Time
	EditedAt        sql.NullTime
	DeletedAt       sql.NullTime
}

// MessageReceipt represents message_receipts; one row per recipient
// that has seen the message. The set of user ids with a non-null
// read_at is the message's readBy set.
type MessageReceipt struct {
	MessageID   uuid.UUID
	UserID      uuid.UUID
	Status      string
	DeliveredAt sql.NullTime
	ReadAt      sql.NullTime
	UpdatedAt   time.Time
}

func (Message) TableName() string {
	return "messages"
}

func (MessageReceipt) TableName() string {
	return "message_receipts"
}

// IsValidType reports whether t is one of the known message types.
func IsValidType(t string) bool {
	switch t {
	case TypeText, TypeImage, TypeFile:
		return true
	}
	return false
}
