package session

import (
	"context"
	"time"
)

// Message is the session-level view of a chat message. It is a plain
// value decoupled from the storage entity so the merge and pagination
// logic can run against fakes.
type Message struct {
	ID            string
	ChatID        string
	SenderID      string
	Text          string
	Type          string
	Status        string
	AttachmentURL string
	CreatedAt     time.Time
	ReadBy        []string
}

// Page is the result of one history fetch.
type Page struct {
	Messages []Message
	HasMore  bool
}

// MessageStore is the remote message history.
type MessageStore interface {
	// FetchRecent returns the most recent limit messages for a chat,
	// oldest first.
	FetchRecent(ctx context.Context, chatID string, limit int) (Page, error)
	// FetchOlder returns up to limit messages strictly older than
	// before, oldest first.
	FetchOlder(ctx context.Context, chatID string, before time.Time, limit int) (Page, error)
}

// LiveFeed delivers the most recent window of messages for a chat on
// every change. Handlers may be invoked from any goroutine and in any
// order relative to in-flight history fetches.
type LiveFeed interface {
	Subscribe(chatID string, limit int, handler func(messages []Message)) (Subscription, error)
}

// Subscription is a handle to an active live feed. Stop is idempotent.
type Subscription interface {
	Stop()
}

// UserDirectory resolves user ids to display names.
type UserDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// Notification describes a single new-foreign-message alert.
type Notification struct {
	ChatID     string
	SenderID   string
	SenderName string
	Body       string
	ViewerID   string
}

// Notifier raises notifications. Failures are the caller's problem to
// log; they must never affect message state.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Placeholder bodies for non-text message types.
const (
	imageBody = "Sent a photo"
	fileBody  = "Sent a file"
)

// NotificationBody returns the notification text for a message: the
// message text for TEXT, a fixed placeholder otherwise.
func NotificationBody(m Message) string {
	switch m.Type {
	case "IMAGE":
		return imageBody
	case "FILE":
		return fileBody
	default:
		return m.Text
	}
}
