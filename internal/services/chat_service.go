package services

import (
	"context"
	"errors"
	"time"

	"guild-chat/internal/domain/chat"
	"guild-chat/internal/repository"
	guild_errors "guild-chat/pkg/errors"

	"github.com/google/uuid"
)

type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{chatRepo: chatRepo, userRepo: userRepo}
}

// ChatSummary is one entry in the viewer's chat list.
type ChatSummary struct {
	ID                string     `json:"id"`
	Kind              string     `json:"kind"`
	LastMessageText   string     `json:"last_message_text,omitempty"`
	LastMessageSender string     `json:"last_message_sender,omitempty"`
	LastMessageAt     *time.Time `json:"last_message_at,omitempty"`
	UnreadCount       int        `json:"unread_count"`
	Participants      []string   `json:"participants"`
}

// CreateDirectChat opens (or returns the existing) one-to-one chat
// between the viewer and recipient.
func (s *ChatService) CreateDirectChat(ctx context.Context, viewerID, recipientID uuid.UUID) (chat.Chat, error) {
	if viewerID == recipientID {
		return chat.Chat{}, guild_errors.ErrInvalidInput
	}
	if _, err := s.userRepo.GetByID(ctx, recipientID); err != nil {
		return chat.Chat{}, err
	}

	existing, err := s.chatRepo.GetDirectChat(ctx, viewerID, recipientID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, guild_errors.ErrNotFound) {
		return chat.Chat{}, err
	}

	now := time.Now()
	c := &chat.Chat{
		ID:        uuid.New(),
		Kind:      chat.KindDirect,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.chatRepo.Create(ctx, c, []uuid.UUID{viewerID, recipientID}); err != nil {
		return chat.Chat{}, err
	}
	return *c, nil
}

// CreateJobChat opens a chat tied to a marketplace job listing.
func (s *ChatService) CreateJobChat(ctx context.Context, jobID uuid.UUID, participantIDs []uuid.UUID) (chat.Chat, error) {
	if len(participantIDs) < 2 {
		return chat.Chat{}, guild_errors.ErrInvalidInput
	}

	now := time.Now()
	c := &chat.Chat{
		ID:        uuid.New(),
		Kind:      chat.KindJob,
		JobID:     uuid.NullUUID{UUID: jobID, Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.chatRepo.Create(ctx, c, participantIDs); err != nil {
		return chat.Chat{}, err
	}
	return *c, nil
}

// GetUserChats lists the viewer's chats, most recently active first,
// with the per-viewer unread count.
func (s *ChatService) GetUserChats(ctx context.Context, viewerID uuid.UUID) ([]ChatSummary, error) {
	chats, err := s.chatRepo.GetUserChats(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		summary := ChatSummary{
			ID:   c.ID.String(),
			Kind: c.Kind,
		}
		if c.LastMessageText.Valid {
			summary.LastMessageText = c.LastMessageText.String
		}
		if c.LastMessageSender.Valid {
			summary.LastMessageSender = c.LastMessageSender.UUID.String()
		}
		if c.LastMessageAt.Valid {
			at := c.LastMessageAt.Time
			summary.LastMessageAt = &at
		}

		participants, err := s.chatRepo.GetParticipants(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range participants {
			summary.Participants = append(summary.Participants, p.UserID.String())
			if p.UserID == viewerID {
				summary.UnreadCount = p.UnreadCount
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// EnsureParticipant rejects access to chats the viewer is not in.
func (s *ChatService) EnsureParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	ok, err := s.chatRepo.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return guild_errors.ErrNotParticipant
	}
	return nil
}
