package services

import (
	"context"
	"time"

	"guild-chat/internal/domain/message"
	"guild-chat/internal/repository"
	"guild-chat/internal/session"
	guild_errors "guild-chat/pkg/errors"

	"github.com/google/uuid"
)

// SessionStore adapts the Postgres message repository to the chat
// session engine's MessageStore interface.
type SessionStore struct {
	messageRepo repository.MessageRepository
}

func NewSessionStore(messageRepo repository.MessageRepository) *SessionStore {
	return &SessionStore{messageRepo: messageRepo}
}

func (s *SessionStore) FetchRecent(ctx context.Context, chatID string, limit int) (session.Page, error) {
	id, err := uuid.Parse(chatID)
	if err != nil {
		return session.Page{}, guild_errors.ErrInvalidInput
	}

	messages, hasMore, err := s.messageRepo.GetRecent(ctx, id, limit)
	if err != nil {
		return session.Page{}, err
	}
	return s.toPage(ctx, messages, hasMore)
}

func (s *SessionStore) FetchOlder(ctx context.Context, chatID string, before time.Time, limit int) (session.Page, error) {
	id, err := uuid.Parse(chatID)
	if err != nil {
		return session.Page{}, guild_errors.ErrInvalidInput
	}

	messages, hasMore, err := s.messageRepo.GetOlder(ctx, id, before, limit)
	if err != nil {
		return session.Page{}, err
	}
	return s.toPage(ctx, messages, hasMore)
}

func (s *SessionStore) toPage(ctx context.Context, messages []message.Message, hasMore bool) (session.Page, error) {
	ids := make([]uuid.UUID, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}
	readBy, err := s.messageRepo.GetReadBy(ctx, ids)
	if err != nil {
		return session.Page{}, err
	}

	out := make([]session.Message, len(messages))
	for i, m := range messages {
		out[i] = toSessionMessage(m, readBy[m.ID])
	}
	return session.Page{Messages: out, HasMore: hasMore}, nil
}

func toSessionMessage(m message.Message, readBy []uuid.UUID) session.Message {
	readers := make([]string, len(readBy))
	for i, id := range readBy {
		readers[i] = id.String()
	}
	return session.Message{
		ID:            m.ID.String(),
		ChatID:        m.ChatID.String(),
		SenderID:      m.SenderID.String(),
		Text:          m.Text.String,
		Type:          m.Type,
		Status:        m.Status,
		AttachmentURL: m.AttachmentURL.String,
		CreatedAt:     m.CreatedAt,
		ReadBy:        readers,
	}
}
