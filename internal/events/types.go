package events

import (
	"context"
	"time"
)

type EventType string

// Event types follow the format: domain.action
const (
	EventMessageNew          EventType = "message.new"
	EventMessageRead         EventType = "message.read"
	EventTypingStarted       EventType = "typing.started"
	EventTypingStopped       EventType = "typing.stopped"
	EventNotificationCreated EventType = "notification.created"
)

// Event is anything the bus can route.
type Event interface {
	Type() EventType
}

// EventHandler consumes routed events.
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
}

// EventHandlerFunc adapts a func to EventHandler.
type EventHandlerFunc func(ctx context.Context, event Event) error

func (f EventHandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher is the producing half of the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// BaseEvent carries the fields shared by every event; embedded by the
// concrete types so the subscriber can sniff the type before decoding.
type BaseEvent struct {
	EventTypeVal EventType `json:"event_type"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (e BaseEvent) Type() EventType {
	return e.EventTypeVal
}

// MessageNewEvent announces a freshly stored message.
type MessageNewEvent struct {
	BaseEvent
	MessageID string    `json:"message_id"`
	ChatID    string    `json:"chat_id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text,omitempty"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageReadEvent announces a viewer catching up on a chat.
type MessageReadEvent struct {
	BaseEvent
	ChatID   string `json:"chat_id"`
	ReaderID string `json:"reader_id"`
}

// TypingEvent covers typing.started and typing.stopped.
type TypingEvent struct {
	BaseEvent
	ChatID string `json:"chat_id"`
	UserID string `json:"user_id"`
}

// NotificationCreatedEvent is pushed to the recipient's user channel.
type NotificationCreatedEvent struct {
	BaseEvent
	NotificationID string `json:"notification_id"`
	UserID         string `json:"user_id"`
	ChatID         string `json:"chat_id"`
	SenderID       string `json:"sender_id"`
	SenderName     string `json:"sender_name"`
	Body           string `json:"body"`
}

func NewMessageNewEvent(messageID, chatID, senderID, text, kind string, createdAt time.Time) *MessageNewEvent {
	return &MessageNewEvent{
		BaseEvent: BaseEvent{EventTypeVal: EventMessageNew, OccurredAt: time.Now()},
		MessageID: messageID,
		ChatID:    chatID,
		SenderID:  senderID,
		Text:      text,
		Kind:      kind,
		CreatedAt: createdAt,
	}
}

func NewMessageReadEvent(chatID, readerID string) *MessageReadEvent {
	return &MessageReadEvent{
		BaseEvent: BaseEvent{EventTypeVal: EventMessageRead, OccurredAt: time.Now()},
		ChatID:    chatID,
		ReaderID:  readerID,
	}
}

func NewTypingEvent(chatID, userID string, started bool) *TypingEvent {
	t := EventTypingStopped
	if started {
		t = EventTypingStarted
	}
	return &TypingEvent{
		BaseEvent: BaseEvent{EventTypeVal: t, OccurredAt: time.Now()},
		ChatID:    chatID,
		UserID:    userID,
	}
}
