package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"guild-chat/internal/domain/chat"
	"guild-chat/internal/domain/message"
	"guild-chat/internal/domain/notification"
	"guild-chat/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	UpdateOnlineStatus(ctx context.Context, userID uuid.UUID, isOnline bool) error
	UpdateLastSeen(ctx context.Context, userID uuid.UUID, lastSeen time.Time) error

	CreateSession(ctx context.Context, s *user.UserSession) error
	GetSessionByID(ctx context.Context, sessionID uuid.UUID) (user.UserSession, error)
	RevokeSession(ctx context.Context, sessionID uuid.UUID) error
}

type ChatRepository interface {
	Create(ctx context.Context, c *chat.Chat, participantIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error)
	GetDirectChat(ctx context.Context, userA, userB uuid.UUID) (chat.Chat, error)
	GetUserChats(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error)
	GetParticipants(ctx context.Context, chatID uuid.UUID) ([]chat.Participant, error)
	GetParticipant(ctx context.Context, chatID, userID uuid.UUID) (chat.Participant, error)
	IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error)
	UpdateLastMessage(ctx context.Context, chatID uuid.UUID, text string, senderID uuid.UUID, at time.Time) error
	IncrementUnread(ctx context.Context, chatID, senderID uuid.UUID) error
	ResetUnread(ctx context.Context, chatID, userID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	GetByClientMessageID(ctx context.Context, chatID uuid.UUID, clientMessageID string) (message.Message, error)
	// GetRecent returns the newest limit messages oldest-first, plus
	// whether older history remains (limit+1 probe).
	GetRecent(ctx context.Context, chatID uuid.UUID, limit int) ([]message.Message, bool, error)
	// GetOlder returns up to limit messages strictly older than
	// before, oldest-first, plus whether more remain.
	GetOlder(ctx context.Context, chatID uuid.UUID, before time.Time, limit int) ([]message.Message, bool, error)
	GetReadBy(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	GetUnreadMessages(ctx context.Context, chatID, userID uuid.UUID) ([]message.Message, error)
	BulkMarkAsRead(ctx context.Context, messageIDs []uuid.UUID, userID uuid.UUID) error
	// UpdateText replaces the message body and stamps edited_at.
	UpdateText(ctx context.Context, messageID uuid.UUID, text string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	GetByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]notification.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}
