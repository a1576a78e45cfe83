package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"guild-chat/internal/domain/chat"
	"guild-chat/internal/domain/user"
	guild_errors "guild-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDirectChatReturnsExisting(t *testing.T) {
	viewerID := uuid.New()
	recipientID := uuid.New()
	existing := chat.Chat{ID: uuid.New(), Kind: chat.KindDirect}

	createCalled := false
	chatRepo := &mockChatRepository{
		GetDirectChatFunc: func(ctx context.Context, a, b uuid.UUID) (chat.Chat, error) {
			return existing, nil
		},
		CreateFunc: func(ctx context.Context, c *chat.Chat, participantIDs []uuid.UUID) error {
			createCalled = true
			return nil
		},
	}
	userRepo := &mockUserRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (user.User, error) {
			return user.User{ID: id}, nil
		},
	}
	svc := NewChatService(chatRepo, userRepo)

	got, err := svc.CreateDirectChat(context.Background(), viewerID, recipientID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	assert.False(t, createCalled, "opening the same pair twice must reuse the chat")
}

func TestCreateDirectChatCreatesWhenMissing(t *testing.T) {
	viewerID := uuid.New()
	recipientID := uuid.New()

	var participants []uuid.UUID
	chatRepo := &mockChatRepository{
		CreateFunc: func(ctx context.Context, c *chat.Chat, participantIDs []uuid.UUID) error {
			participants = participantIDs
			return nil
		},
	}
	userRepo := &mockUserRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (user.User, error) {
			return user.User{ID: id}, nil
		},
	}
	svc := NewChatService(chatRepo, userRepo)

	got, err := svc.CreateDirectChat(context.Background(), viewerID, recipientID)
	require.NoError(t, err)
	assert.Equal(t, chat.KindDirect, got.Kind)
	assert.ElementsMatch(t, []uuid.UUID{viewerID, recipientID}, participants)
}

func TestCreateDirectChatRejections(t *testing.T) {
	viewerID := uuid.New()
	svc := NewChatService(&mockChatRepository{}, &mockUserRepository{})

	_, err := svc.CreateDirectChat(context.Background(), viewerID, viewerID)
	assert.ErrorIs(t, err, guild_errors.ErrInvalidInput)

	// Unknown recipient: the default mock returns not found.
	_, err = svc.CreateDirectChat(context.Background(), viewerID, uuid.New())
	assert.ErrorIs(t, err, guild_errors.ErrNotFound)
}

func TestCreateJobChatNeedsTwoParticipants(t *testing.T) {
	svc := NewChatService(&mockChatRepository{}, &mockUserRepository{})

	_, err := svc.CreateJobChat(context.Background(), uuid.New(), []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, guild_errors.ErrInvalidInput)
}

func TestGetUserChatsBuildsSummaries(t *testing.T) {
	viewerID := uuid.New()
	otherID := uuid.New()
	chatID := uuid.New()
	lastAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	chatRepo := &mockChatRepository{
		GetUserChatsFunc: func(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
			return []chat.Chat{{
				ID:                chatID,
				Kind:              chat.KindDirect,
				LastMessageText:   sql.NullString{String: "see you there", Valid: true},
				LastMessageSender: uuid.NullUUID{UUID: otherID, Valid: true},
				LastMessageAt:     sql.NullTime{Time: lastAt, Valid: true},
			}}, nil
		},
		GetParticipantsFunc: func(ctx context.Context, id uuid.UUID) ([]chat.Participant, error) {
			return []chat.Participant{
				{ChatID: chatID, UserID: viewerID, UnreadCount: 3},
				{ChatID: chatID, UserID: otherID},
			}, nil
		},
	}
	svc := NewChatService(chatRepo, &mockUserRepository{})

	summaries, err := svc.GetUserChats(context.Background(), viewerID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	summary := summaries[0]
	assert.Equal(t, chatID.String(), summary.ID)
	assert.Equal(t, "see you there", summary.LastMessageText)
	assert.Equal(t, otherID.String(), summary.LastMessageSender)
	require.NotNil(t, summary.LastMessageAt)
	assert.True(t, summary.LastMessageAt.Equal(lastAt))
	assert.Equal(t, 3, summary.UnreadCount, "unread count is the viewer's, not the sender's")
	assert.Len(t, summary.Participants, 2)
}

func TestEnsureParticipant(t *testing.T) {
	chatRepo := &mockChatRepository{
		IsParticipantFunc: func(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	svc := NewChatService(chatRepo, &mockUserRepository{})

	err := svc.EnsureParticipant(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, guild_errors.ErrNotParticipant)
}
