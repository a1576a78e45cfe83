package services

import (
	"context"
	"errors"
	"time"

	"guild-chat/internal/domain/message"
	"guild-chat/internal/events"
	"guild-chat/internal/repository"
	guild_errors "guild-chat/pkg/errors"
	"guild-chat/pkg/logger"

	"github.com/google/uuid"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	chatRepo    repository.ChatRepository
	publisher   events.Publisher
	log         *logger.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, chatRepo repository.ChatRepository, publisher events.Publisher, log *logger.Logger) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		publisher:   publisher,
		log:         log,
	}
}

type SendInput struct {
	ChatID          uuid.UUID
	SenderID        uuid.UUID
	Text            string
	Type            string
	ClientMessageID string
	AttachmentURL   string
	AttachmentName  string
}

// Send stores a message and fans it out. Sends are idempotent by
// client message id, so an optimistic client retry never duplicates.
func (s *MessageService) Send(ctx context.Context, in SendInput) (message.Message, error) {
	if in.Type == "" {
		in.Type = message.TypeText
	}
	if !message.IsValidType(in.Type) {
		return message.Message{}, guild_errors.ErrInvalidInput
	}
	if in.Type == message.TypeText && in.Text == "" {
		return message.Message{}, guild_errors.ErrInvalidInput
	}
	if in.Type != message.TypeText && in.AttachmentURL == "" {
		return message.Message{}, guild_errors.ErrInvalidInput
	}

	if err := s.ensureParticipant(ctx, in.ChatID, in.SenderID); err != nil {
		return message.Message{}, err
	}

	if in.ClientMessageID != "" {
		existing, err := s.messageRepo.GetByClientMessageID(ctx, in.ChatID, in.ClientMessageID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, guild_errors.ErrNotFound) {
			return message.Message{}, err
		}
	}

	now := time.Now()
	m := &message.Message{
		ID:              uuid.New(),
		ChatID:          in.ChatID,
		SenderID:        in.SenderID,
		ClientMessageID: toNullString(in.ClientMessageID),
		Type:            in.Type,
		Text:            toNullString(in.Text),
		AttachmentURL:   toNullString(in.AttachmentURL),
		AttachmentName:  toNullString(in.AttachmentName),
		Status:          message.StatusSent,
		CreatedAt:       now,
	}
	if err := s.messageRepo.Create(ctx, m); err != nil {
		return message.Message{}, err
	}

	if err := s.chatRepo.UpdateLastMessage(ctx, in.ChatID, summaryText(*m), in.SenderID, now); err != nil {
		s.log.Errorf("failed to update last message for chat %s: %v", in.ChatID, err)
	}
	if err := s.chatRepo.IncrementUnread(ctx, in.ChatID, in.SenderID); err != nil {
		s.log.Errorf("failed to bump unread counts for chat %s: %v", in.ChatID, err)
	}

	event := events.NewMessageNewEvent(m.ID.String(), m.ChatID.String(), m.SenderID.String(), in.Text, m.Type, m.CreatedAt)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Errorf("failed to publish message event for %s: %v", m.ID, err)
	}

	return *m, nil
}

// MessagePage is one page of chat history, oldest-first.
type MessagePage struct {
	Messages []message.Message
	ReadBy   map[uuid.UUID][]uuid.UUID
	HasMore  bool
}

// History pages through a chat. A nil before returns the newest window;
// otherwise messages strictly older than before.
func (s *MessageService) History(ctx context.Context, chatID, viewerID uuid.UUID, before *time.Time, limit int) (MessagePage, error) {
	if limit <= 0 {
		return MessagePage{}, guild_errors.ErrInvalidInput
	}
	if err := s.ensureParticipant(ctx, chatID, viewerID); err != nil {
		return MessagePage{}, err
	}

	var (
		msgs    []message.Message
		hasMore bool
		err     error
	)
	if before == nil {
		msgs, hasMore, err = s.messageRepo.GetRecent(ctx, chatID, limit)
	} else {
		msgs, hasMore, err = s.messageRepo.GetOlder(ctx, chatID, *before, limit)
	}
	if err != nil {
		return MessagePage{}, err
	}

	page := MessagePage{Messages: msgs, HasMore: hasMore}
	if len(msgs) > 0 {
		ids := make([]uuid.UUID, len(msgs))
		for i, m := range msgs {
			ids[i] = m.ID
		}
		readBy, err := s.messageRepo.GetReadBy(ctx, ids)
		if err != nil {
			s.log.Warnf("failed to load read receipts for chat %s: %v", chatID, err)
		} else {
			page.ReadBy = readBy
		}
	}
	return page, nil
}

// MarkChatRead records read receipts for every unread foreign message
// and resets the viewer's unread counter.
func (s *MessageService) MarkChatRead(ctx context.Context, chatID, userID uuid.UUID) error {
	if err := s.ensureParticipant(ctx, chatID, userID); err != nil {
		return err
	}

	unread, err := s.messageRepo.GetUnreadMessages(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if len(unread) > 0 {
		ids := make([]uuid.UUID, len(unread))
		for i, m := range unread {
			ids[i] = m.ID
		}
		if err := s.messageRepo.BulkMarkAsRead(ctx, ids, userID); err != nil {
			return err
		}
	}

	if err := s.chatRepo.ResetUnread(ctx, chatID, userID); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, events.NewMessageReadEvent(chatID.String(), userID.String())); err != nil {
		s.log.Errorf("failed to publish read event for chat %s: %v", chatID, err)
	}
	return nil
}

// Edit replaces the text of the sender's own message and flags it as
// edited.
func (s *MessageService) Edit(ctx context.Context, messageID, userID uuid.UUID, text string) error {
	if text == "" {
		return guild_errors.ErrInvalidInput
	}

	m, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if m.SenderID != userID {
		return guild_errors.ErrForbidden
	}
	if m.Type != message.TypeText {
		return guild_errors.ErrInvalidInput
	}

	if err := s.messageRepo.UpdateText(ctx, messageID, text); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, events.NewMessageNewEvent(m.ID.String(), m.ChatID.String(), m.SenderID.String(), text, m.Type, m.CreatedAt)); err != nil {
		s.log.Errorf("failed to publish edit event for %s: %v", m.ID, err)
	}
	return nil
}

// Delete soft-deletes the sender's own message.
func (s *MessageService) Delete(ctx context.Context, messageID, userID uuid.UUID) error {
	m, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if m.SenderID != userID {
		return guild_errors.ErrForbidden
	}
	return s.messageRepo.SoftDelete(ctx, messageID)
}

// Typing relays a transient typing indicator; nothing is persisted.
func (s *MessageService) Typing(ctx context.Context, chatID, userID uuid.UUID, started bool) error {
	if err := s.ensureParticipant(ctx, chatID, userID); err != nil {
		return err
	}
	return s.publisher.Publish(ctx, events.NewTypingEvent(chatID.String(), userID.String(), started))
}

func (s *MessageService) ensureParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	ok, err := s.chatRepo.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return guild_errors.ErrNotParticipant
	}
	return nil
}

func summaryText(m message.Message) string {
	switch m.Type {
	case message.TypeImage:
		return "\U0001F4F7 Photo"
	case message.TypeFile:
		return "\U0001F4CE File"
	default:
		return m.Text.String
	}
}
