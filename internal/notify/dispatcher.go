package notify

import (
	"context"
	"time"

	"guild-chat/internal/domain/notification"
	"guild-chat/internal/events"
	"guild-chat/internal/repository"
	"guild-chat/internal/session"
	guild_errors "guild-chat/pkg/errors"
	"guild-chat/pkg/logger"

	"github.com/google/uuid"
)

// Dispatcher implements session.Notifier. Each new foreign message
// becomes a persisted notification row for the viewer plus a push on
// the viewer's Redis user channel, picked up by any connected socket.
type Dispatcher struct {
	repo      repository.NotificationRepository
	publisher events.Publisher
	log       *logger.Logger
}

func NewDispatcher(repo repository.NotificationRepository, publisher events.Publisher, log *logger.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, publisher: publisher, log: log}
}

func (d *Dispatcher) Notify(ctx context.Context, n session.Notification) error {
	viewerID, err := uuid.Parse(n.ViewerID)
	if err != nil {
		return guild_errors.ErrInvalidInput
	}
	chatID, err := uuid.Parse(n.ChatID)
	if err != nil {
		return guild_errors.ErrInvalidInput
	}
	senderID, err := uuid.Parse(n.SenderID)
	if err != nil {
		return guild_errors.ErrInvalidInput
	}

	record := &notification.Notification{
		ID:         uuid.New(),
		UserID:     viewerID,
		ChatID:     chatID,
		SenderID:   senderID,
		SenderName: n.SenderName,
		Body:       n.Body,
		CreatedAt:  time.Now(),
	}
	if err := d.repo.Create(ctx, record); err != nil {
		return err
	}

	event := &events.NotificationCreatedEvent{
		BaseEvent:      events.BaseEvent{EventTypeVal: events.EventNotificationCreated, OccurredAt: record.CreatedAt},
		NotificationID: record.ID.String(),
		UserID:         n.ViewerID,
		ChatID:         n.ChatID,
		SenderID:       n.SenderID,
		SenderName:     n.SenderName,
		Body:           n.Body,
	}
	if err := d.publisher.Publish(ctx, event); err != nil {
		// The row is stored; the push is best effort.
		d.log.Warnf("notification push failed for user %s: %v", n.ViewerID, err)
	}
	return nil
}

// List returns one page of the user's notifications, newest first,
// plus the total count.
func (d *Dispatcher) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]notification.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return d.repo.GetByUser(ctx, userID, page, limit)
}

// MarkRead marks one of the user's notifications as read.
func (d *Dispatcher) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return d.repo.MarkRead(ctx, id, userID)
}

// UnreadCount returns how many of the user's notifications are unread.
func (d *Dispatcher) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return d.repo.UnreadCount(ctx, userID)
}
