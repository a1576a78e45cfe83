package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"guild-chat/internal/domain/message"
	"guild-chat/internal/events"
	guild_errors "guild-chat/pkg/errors"
	"guild-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageService(messageRepo *mockMessageRepository, chatRepo *mockChatRepository, publisher *mockPublisher) *MessageService {
	return NewMessageService(messageRepo, chatRepo, publisher, logger.New("debug"))
}

func TestSendStoresMessageAndPublishes(t *testing.T) {
	chatID := uuid.New()
	senderID := uuid.New()

	var created *message.Message
	messageRepo := &mockMessageRepository{
		CreateFunc: func(ctx context.Context, m *message.Message) error {
			created = m
			return nil
		},
	}
	var lastMessageText string
	chatRepo := &mockChatRepository{
		UpdateLastMessageFunc: func(ctx context.Context, id uuid.UUID, text string, sender uuid.UUID, at time.Time) error {
			lastMessageText = text
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := newMessageService(messageRepo, chatRepo, publisher)

	got, err := svc.Send(context.Background(), SendInput{
		ChatID:   chatID,
		SenderID: senderID,
		Text:     "hello there",
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, message.TypeText, created.Type)
	assert.Equal(t, message.StatusSent, created.Status)
	assert.Equal(t, "hello there", created.Text.String)
	assert.Equal(t, got.ID, created.ID)
	assert.Equal(t, "hello there", lastMessageText)

	published := publisher.Events()
	require.Len(t, published, 1)
	event, ok := published[0].(*events.MessageNewEvent)
	require.True(t, ok)
	assert.Equal(t, chatID.String(), event.ChatID)
	assert.Equal(t, senderID.String(), event.SenderID)
}

func TestSendValidation(t *testing.T) {
	tests := []struct {
		name  string
		input SendInput
	}{
		{"unknown type", SendInput{ChatID: uuid.New(), SenderID: uuid.New(), Type: "VOICE", Text: "hi"}},
		{"text message without text", SendInput{ChatID: uuid.New(), SenderID: uuid.New(), Type: message.TypeText}},
		{"image without attachment", SendInput{ChatID: uuid.New(), SenderID: uuid.New(), Type: message.TypeImage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			createCalled := false
			messageRepo := &mockMessageRepository{
				CreateFunc: func(ctx context.Context, m *message.Message) error {
					createCalled = true
					return nil
				},
			}
			svc := newMessageService(messageRepo, &mockChatRepository{}, &mockPublisher{})

			_, err := svc.Send(context.Background(), tt.input)
			assert.ErrorIs(t, err, guild_errors.ErrInvalidInput)
			assert.False(t, createCalled)
		})
	}
}

func TestSendRejectsNonParticipant(t *testing.T) {
	chatRepo := &mockChatRepository{
		IsParticipantFunc: func(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	svc := newMessageService(&mockMessageRepository{}, chatRepo, &mockPublisher{})

	_, err := svc.Send(context.Background(), SendInput{ChatID: uuid.New(), SenderID: uuid.New(), Text: "hi"})
	assert.ErrorIs(t, err, guild_errors.ErrNotParticipant)
}

func TestSendIsIdempotentByClientMessageID(t *testing.T) {
	chatID := uuid.New()
	existing := message.Message{
		ID:     uuid.New(),
		ChatID: chatID,
		Type:   message.TypeText,
		Text:   sql.NullString{String: "already sent", Valid: true},
	}
	createCalled := false
	messageRepo := &mockMessageRepository{
		GetByClientMessageIDFunc: func(ctx context.Context, id uuid.UUID, clientMessageID string) (message.Message, error) {
			assert.Equal(t, "client-123", clientMessageID)
			return existing, nil
		},
		CreateFunc: func(ctx context.Context, m *message.Message) error {
			createCalled = true
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := newMessageService(messageRepo, &mockChatRepository{}, publisher)

	got, err := svc.Send(context.Background(), SendInput{
		ChatID:          chatID,
		SenderID:        uuid.New(),
		Text:            "already sent",
		ClientMessageID: "client-123",
	})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, got.ID)
	assert.False(t, createCalled, "a retry must return the stored message")
	assert.Empty(t, publisher.Events(), "a retry must not publish again")
}

func TestHistoryUsesRecentOrOlderFetch(t *testing.T) {
	chatID := uuid.New()
	viewerID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m1 := message.Message{ID: uuid.New(), ChatID: chatID, CreatedAt: base}
	reader := uuid.New()

	var recentCalls, olderCalls int
	messageRepo := &mockMessageRepository{
		GetRecentFunc: func(ctx context.Context, id uuid.UUID, limit int) ([]message.Message, bool, error) {
			recentCalls++
			assert.Equal(t, 50, limit)
			return []message.Message{m1}, true, nil
		},
		GetOlderFunc: func(ctx context.Context, id uuid.UUID, before time.Time, limit int) ([]message.Message, bool, error) {
			olderCalls++
			assert.True(t, before.Equal(base))
			return nil, false, nil
		},
		GetReadByFunc: func(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
			return map[uuid.UUID][]uuid.UUID{m1.ID: {reader}}, nil
		},
	}
	svc := newMessageService(messageRepo, &mockChatRepository{}, &mockPublisher{})

	page, err := svc.History(context.Background(), chatID, viewerID, nil, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, recentCalls)
	assert.True(t, page.HasMore)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, []uuid.UUID{reader}, page.ReadBy[m1.ID])

	before := base
	older, err := svc.History(context.Background(), chatID, viewerID, &before, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, olderCalls)
	assert.False(t, older.HasMore)

	_, err = svc.History(context.Background(), chatID, viewerID, nil, 0)
	assert.ErrorIs(t, err, guild_errors.ErrInvalidInput)
}

func TestMarkChatReadRecordsReceiptsAndResetsUnread(t *testing.T) {
	chatID := uuid.New()
	viewerID := uuid.New()
	unread := []message.Message{
		{ID: uuid.New(), ChatID: chatID},
		{ID: uuid.New(), ChatID: chatID},
	}

	var markedIDs []uuid.UUID
	messageRepo := &mockMessageRepository{
		GetUnreadMessagesFunc: func(ctx context.Context, id, userID uuid.UUID) ([]message.Message, error) {
			return unread, nil
		},
		BulkMarkAsReadFunc: func(ctx context.Context, messageIDs []uuid.UUID, userID uuid.UUID) error {
			markedIDs = messageIDs
			return nil
		},
	}
	resetCalled := false
	chatRepo := &mockChatRepository{
		ResetUnreadFunc: func(ctx context.Context, id, userID uuid.UUID) error {
			resetCalled = true
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := newMessageService(messageRepo, chatRepo, publisher)

	require.NoError(t, svc.MarkChatRead(context.Background(), chatID, viewerID))

	assert.Equal(t, []uuid.UUID{unread[0].ID, unread[1].ID}, markedIDs)
	assert.True(t, resetCalled)

	published := publisher.Events()
	require.Len(t, published, 1)
	event, ok := published[0].(*events.MessageReadEvent)
	require.True(t, ok)
	assert.Equal(t, viewerID.String(), event.ReaderID)
}

func TestMarkChatReadWithNothingUnreadSkipsReceipts(t *testing.T) {
	bulkCalled := false
	messageRepo := &mockMessageRepository{
		BulkMarkAsReadFunc: func(ctx context.Context, messageIDs []uuid.UUID, userID uuid.UUID) error {
			bulkCalled = true
			return nil
		},
	}
	svc := newMessageService(messageRepo, &mockChatRepository{}, &mockPublisher{})

	require.NoError(t, svc.MarkChatRead(context.Background(), uuid.New(), uuid.New()))
	assert.False(t, bulkCalled)
}

func TestEditRules(t *testing.T) {
	senderID := uuid.New()
	stored := message.Message{
		ID:       uuid.New(),
		ChatID:   uuid.New(),
		SenderID: senderID,
		Type:     message.TypeText,
		Text:     sql.NullString{String: "original", Valid: true},
	}
	messageRepo := &mockMessageRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (message.Message, error) {
			return stored, nil
		},
	}
	svc := newMessageService(messageRepo, &mockChatRepository{}, &mockPublisher{})

	err := svc.Edit(context.Background(), stored.ID, uuid.New(), "tampered")
	assert.ErrorIs(t, err, guild_errors.ErrForbidden)

	err = svc.Edit(context.Background(), stored.ID, senderID, "")
	assert.ErrorIs(t, err, guild_errors.ErrInvalidInput)

	var updatedText string
	messageRepo.UpdateTextFunc = func(ctx context.Context, messageID uuid.UUID, text string) error {
		updatedText = text
		return nil
	}
	require.NoError(t, svc.Edit(context.Background(), stored.ID, senderID, "fixed typo"))
	assert.Equal(t, "fixed typo", updatedText)
}

func TestDeleteOnlyBySender(t *testing.T) {
	senderID := uuid.New()
	stored := message.Message{ID: uuid.New(), SenderID: senderID}
	deleted := false
	messageRepo := &mockMessageRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (message.Message, error) {
			return stored, nil
		},
		SoftDeleteFunc: func(ctx context.Context, id uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	svc := newMessageService(messageRepo, &mockChatRepository{}, &mockPublisher{})

	assert.ErrorIs(t, svc.Delete(context.Background(), stored.ID, uuid.New()), guild_errors.ErrForbidden)
	assert.False(t, deleted)

	require.NoError(t, svc.Delete(context.Background(), stored.ID, senderID))
	assert.True(t, deleted)
}
