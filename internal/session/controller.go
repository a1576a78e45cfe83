package session

import (
	"context"
	"sync"

	"guild-chat/pkg/logger"
)

// Controller owns at most one active session per viewer. Opening a
// chat closes the previous session first, so results still in flight
// for the abandoned chat can never touch the new one.
type Controller struct {
	viewerID  string
	store     MessageStore
	feed      LiveFeed
	notifier  Notifier
	directory UserDirectory
	log       *logger.Logger
	cfg       Config

	mu     sync.Mutex
	active *Session
}

func NewController(viewerID string, store MessageStore, feed LiveFeed, notifier Notifier, directory UserDirectory, log *logger.Logger, cfg Config) *Controller {
	return &Controller{
		viewerID:  viewerID,
		store:     store,
		feed:      feed,
		notifier:  notifier,
		directory: directory,
		log:       log,
		cfg:       cfg,
	}
}

// Open switches the viewer to chatID. onUpdate receives every merged
// list the new session produces.
func (c *Controller) Open(ctx context.Context, chatID string, onUpdate func(messages []Message)) (*Session, error) {
	c.mu.Lock()
	prev := c.active
	s := New(chatID, c.viewerID, c.store, c.feed, c.notifier, c.directory, c.log, c.cfg)
	s.OnUpdate(onUpdate)
	c.active = s
	c.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	if err := s.Open(ctx); err != nil {
		c.mu.Lock()
		if c.active == s {
			c.active = nil
		}
		c.mu.Unlock()
		s.Close()
		return nil, err
	}
	return s, nil
}

// Active returns the current session, or nil.
func (c *Controller) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Close discards the active session, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	s := c.active
	c.active = nil
	c.mu.Unlock()
	if s != nil {
		s.Close()
	}
}
