package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"guild-chat/internal/domain/message"
	"guild-chat/internal/domain/user"
	guild_errors "guild-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreFetchRecentMapsMessages(t *testing.T) {
	chatID := uuid.New()
	senderID := uuid.New()
	readerID := uuid.New()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	stored := message.Message{
		ID:            uuid.New(),
		ChatID:        chatID,
		SenderID:      senderID,
		Type:          message.TypeImage,
		Status:        message.StatusRead,
		Text:          sql.NullString{},
		AttachmentURL: sql.NullString{String: "https://cdn.example.com/a.jpg", Valid: true},
		CreatedAt:     at,
	}
	messageRepo := &mockMessageRepository{
		GetRecentFunc: func(ctx context.Context, id uuid.UUID, limit int) ([]message.Message, bool, error) {
			assert.Equal(t, chatID, id)
			assert.Equal(t, 25, limit)
			return []message.Message{stored}, true, nil
		},
		GetReadByFunc: func(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
			return map[uuid.UUID][]uuid.UUID{stored.ID: {readerID}}, nil
		},
	}
	store := NewSessionStore(messageRepo)

	page, err := store.FetchRecent(context.Background(), chatID.String(), 25)
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	require.Len(t, page.Messages, 1)

	got := page.Messages[0]
	assert.Equal(t, stored.ID.String(), got.ID)
	assert.Equal(t, senderID.String(), got.SenderID)
	assert.Equal(t, message.TypeImage, got.Type)
	assert.Equal(t, "https://cdn.example.com/a.jpg", got.AttachmentURL)
	assert.Equal(t, []string{readerID.String()}, got.ReadBy)
	assert.True(t, got.CreatedAt.Equal(at))
}

func TestSessionStoreFetchOlderPassesCursor(t *testing.T) {
	chatID := uuid.New()
	before := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	messageRepo := &mockMessageRepository{
		GetOlderFunc: func(ctx context.Context, id uuid.UUID, cursor time.Time, limit int) ([]message.Message, bool, error) {
			assert.True(t, cursor.Equal(before))
			return nil, false, nil
		},
	}
	store := NewSessionStore(messageRepo)

	page, err := store.FetchOlder(context.Background(), chatID.String(), before, 25)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.Messages)
}

func TestSessionStoreRejectsBadChatID(t *testing.T) {
	store := NewSessionStore(&mockMessageRepository{})

	_, err := store.FetchRecent(context.Background(), "not-a-uuid", 25)
	assert.ErrorIs(t, err, guild_errors.ErrInvalidInput)

	_, err = store.FetchOlder(context.Background(), "not-a-uuid", time.Now(), 25)
	assert.ErrorIs(t, err, guild_errors.ErrInvalidInput)
}

func TestUserServiceDisplayNameFallsBackToRepo(t *testing.T) {
	userID := uuid.New()
	userRepo := &mockUserRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (user.User, error) {
			return user.User{ID: id, DisplayName: "Sam"}, nil
		},
	}
	svc := NewUserService(userRepo, nil)

	name, err := svc.DisplayName(context.Background(), userID.String())
	require.NoError(t, err)
	assert.Equal(t, "Sam", name)

	_, err = svc.DisplayName(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, guild_errors.ErrInvalidInput)
}
