package services

import (
	"context"
	"sync"
	"time"

	"guild-chat/internal/domain/chat"
	"guild-chat/internal/domain/message"
	"guild-chat/internal/domain/user"
	"guild-chat/internal/events"
	guild_errors "guild-chat/pkg/errors"

	"github.com/google/uuid"
)

type mockUserRepository struct {
	CreateFunc             func(ctx context.Context, u *user.User) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmailFunc         func(ctx context.Context, email string) (user.User, error)
	GetByUsernameFunc      func(ctx context.Context, username string) (user.User, error)
	UpdateOnlineStatusFunc func(ctx context.Context, userID uuid.UUID, isOnline bool) error
	UpdateLastSeenFunc     func(ctx context.Context, userID uuid.UUID, lastSeen time.Time) error
	CreateSessionFunc      func(ctx context.Context, s *user.UserSession) error
	GetSessionByIDFunc     func(ctx context.Context, sessionID uuid.UUID) (user.UserSession, error)
	RevokeSessionFunc      func(ctx context.Context, sessionID uuid.UUID) error
}

func (m *mockUserRepository) Create(ctx context.Context, u *user.User) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, u)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	if m.GetByIDFunc == nil {
		return user.User{}, guild_errors.ErrNotFound
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if m.GetByEmailFunc == nil {
		return user.User{}, guild_errors.ErrNotFound
	}
	return m.GetByEmailFunc(ctx, email)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	if m.GetByUsernameFunc == nil {
		return user.User{}, guild_errors.ErrNotFound
	}
	return m.GetByUsernameFunc(ctx, username)
}

func (m *mockUserRepository) UpdateOnlineStatus(ctx context.Context, userID uuid.UUID, isOnline bool) error {
	if m.UpdateOnlineStatusFunc == nil {
		return nil
	}
	return m.UpdateOnlineStatusFunc(ctx, userID, isOnline)
}

func (m *mockUserRepository) UpdateLastSeen(ctx context.Context, userID uuid.UUID, lastSeen time.Time) error {
	if m.UpdateLastSeenFunc == nil {
		return nil
	}
	return m.UpdateLastSeenFunc(ctx, userID, lastSeen)
}

func (m *mockUserRepository) CreateSession(ctx context.Context, s *user.UserSession) error {
	if m.CreateSessionFunc == nil {
		return nil
	}
	return m.CreateSessionFunc(ctx, s)
}

func (m *mockUserRepository) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (user.UserSession, error) {
	if m.GetSessionByIDFunc == nil {
		return user.UserSession{}, guild_errors.ErrNotFound
	}
	return m.GetSessionByIDFunc(ctx, sessionID)
}

func (m *mockUserRepository) RevokeSession(ctx context.Context, sessionID uuid.UUID) error {
	if m.RevokeSessionFunc == nil {
		return nil
	}
	return m.RevokeSessionFunc(ctx, sessionID)
}

type mockChatRepository struct {
	CreateFunc            func(ctx context.Context, c *chat.Chat, participantIDs []uuid.UUID) error
	GetByIDFunc           func(ctx context.Context, id uuid.UUID) (chat.Chat, error)
	GetDirectChatFunc     func(ctx context.Context, userA, userB uuid.UUID) (chat.Chat, error)
	GetUserChatsFunc      func(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error)
	GetParticipantsFunc   func(ctx context.Context, chatID uuid.UUID) ([]chat.Participant, error)
	GetParticipantFunc    func(ctx context.Context, chatID, userID uuid.UUID) (chat.Participant, error)
	IsParticipantFunc     func(ctx context.Context, chatID, userID uuid.UUID) (bool, error)
	UpdateLastMessageFunc func(ctx context.Context, chatID uuid.UUID, text string, senderID uuid.UUID, at time.Time) error
	IncrementUnreadFunc   func(ctx context.Context, chatID, senderID uuid.UUID) error
	ResetUnreadFunc       func(ctx context.Context, chatID, userID uuid.UUID) error
}

func (m *mockChatRepository) Create(ctx context.Context, c *chat.Chat, participantIDs []uuid.UUID) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, c, participantIDs)
}

func (m *mockChatRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	if m.GetByIDFunc == nil {
		return chat.Chat{}, guild_errors.ErrNotFound
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *mockChatRepository) GetDirectChat(ctx context.Context, userA, userB uuid.UUID) (chat.Chat, error) {
	if m.GetDirectChatFunc == nil {
		return chat.Chat{}, guild_errors.ErrNotFound
	}
	return m.GetDirectChatFunc(ctx, userA, userB)
}

func (m *mockChatRepository) GetUserChats(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	if m.GetUserChatsFunc == nil {
		return nil, nil
	}
	return m.GetUserChatsFunc(ctx, userID)
}

func (m *mockChatRepository) GetParticipants(ctx context.Context, chatID uuid.UUID) ([]chat.Participant, error) {
	if m.GetParticipantsFunc == nil {
		return nil, nil
	}
	return m.GetParticipantsFunc(ctx, chatID)
}

func (m *mockChatRepository) GetParticipant(ctx context.Context, chatID, userID uuid.UUID) (chat.Participant, error) {
	if m.GetParticipantFunc == nil {
		return chat.Participant{}, guild_errors.ErrNotFound
	}
	return m.GetParticipantFunc(ctx, chatID, userID)
}

func (m *mockChatRepository) IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	if m.IsParticipantFunc == nil {
		return true, nil
	}
	return m.IsParticipantFunc(ctx, chatID, userID)
}

func (m *mockChatRepository) UpdateLastMessage(ctx context.Context, chatID uuid.UUID, text string, senderID uuid.UUID, at time.Time) error {
	if m.UpdateLastMessageFunc == nil {
		return nil
	}
	return m.UpdateLastMessageFunc(ctx, chatID, text, senderID, at)
}

func (m *mockChatRepository) IncrementUnread(ctx context.Context, chatID, senderID uuid.UUID) error {
	if m.IncrementUnreadFunc == nil {
		return nil
	}
	return m.IncrementUnreadFunc(ctx, chatID, senderID)
}

func (m *mockChatRepository) ResetUnread(ctx context.Context, chatID, userID uuid.UUID) error {
	if m.ResetUnreadFunc == nil {
		return nil
	}
	return m.ResetUnreadFunc(ctx, chatID, userID)
}

type mockMessageRepository struct {
	CreateFunc               func(ctx context.Context, m *message.Message) error
	GetByIDFunc              func(ctx context.Context, id uuid.UUID) (message.Message, error)
	GetByClientMessageIDFunc func(ctx context.Context, chatID uuid.UUID, clientMessageID string) (message.Message, error)
	GetRecentFunc            func(ctx context.Context, chatID uuid.UUID, limit int) ([]message.Message, bool, error)
	GetOlderFunc             func(ctx context.Context, chatID uuid.UUID, before time.Time, limit int) ([]message.Message, bool, error)
	GetReadByFunc            func(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	GetUnreadMessagesFunc    func(ctx context.Context, chatID, userID uuid.UUID) ([]message.Message, error)
	BulkMarkAsReadFunc       func(ctx context.Context, messageIDs []uuid.UUID, userID uuid.UUID) error
	UpdateTextFunc           func(ctx context.Context, messageID uuid.UUID, text string) error
	SoftDeleteFunc           func(ctx context.Context, id uuid.UUID) error
}

func (m *mockMessageRepository) Create(ctx context.Context, msg *message.Message) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, msg)
}

func (m *mockMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	if m.GetByIDFunc == nil {
		return message.Message{}, guild_errors.ErrNotFound
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *mockMessageRepository) GetByClientMessageID(ctx context.Context, chatID uuid.UUID, clientMessageID string) (message.Message, error) {
	if m.GetByClientMessageIDFunc == nil {
		return message.Message{}, guild_errors.ErrNotFound
	}
	return m.GetByClientMessageIDFunc(ctx, chatID, clientMessageID)
}

func (m *mockMessageRepository) GetRecent(ctx context.Context, chatID uuid.UUID, limit int) ([]message.Message, bool, error) {
	if m.GetRecentFunc == nil {
		return nil, false, nil
	}
	return m.GetRecentFunc(ctx, chatID, limit)
}

func (m *mockMessageRepository) GetOlder(ctx context.Context, chatID uuid.UUID, before time.Time, limit int) ([]message.Message, bool, error) {
	if m.GetOlderFunc == nil {
		return nil, false, nil
	}
	return m.GetOlderFunc(ctx, chatID, before, limit)
}

func (m *mockMessageRepository) GetReadBy(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	if m.GetReadByFunc == nil {
		return map[uuid.UUID][]uuid.UUID{}, nil
	}
	return m.GetReadByFunc(ctx, messageIDs)
}

func (m *mockMessageRepository) GetUnreadMessages(ctx context.Context, chatID, userID uuid.UUID) ([]message.Message, error) {
	if m.GetUnreadMessagesFunc == nil {
		return nil, nil
	}
	return m.GetUnreadMessagesFunc(ctx, chatID, userID)
}

func (m *mockMessageRepository) BulkMarkAsRead(ctx context.Context, messageIDs []uuid.UUID, userID uuid.UUID) error {
	if m.BulkMarkAsReadFunc == nil {
		return nil
	}
	return m.BulkMarkAsReadFunc(ctx, messageIDs, userID)
}

func (m *mockMessageRepository) UpdateText(ctx context.Context, messageID uuid.UUID, text string) error {
	if m.UpdateTextFunc == nil {
		return nil
	}
	return m.UpdateTextFunc(ctx, messageID, text)
}

func (m *mockMessageRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if m.SoftDeleteFunc == nil {
		return nil
	}
	return m.SoftDeleteFunc(ctx, id)
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return p.err
}

func (p *mockPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}
