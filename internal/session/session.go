package session

import (
	"context"
	"sync"
	"time"

	guild_errors "guild-chat/pkg/errors"
	"guild-chat/pkg/logger"
)

// Config tunes one chat session.
type Config struct {
	// PageSize is the number of messages requested per history fetch.
	PageSize int
	// LiveWindow is the size of the live subscription window.
	LiveWindow int
	// CallTimeout bounds every store and directory call.
	CallTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		PageSize:    50,
		LiveWindow:  50,
		CallTimeout: 10 * time.Second,
	}
}

// Session owns the message state for one viewer looking at one chat:
// the merged cache, the live subscription, the pagination guard and
// the notification side effect. It is created on chat open and
// discarded on chat close or switch; the cache is never persisted.
//
// All state mutation is serialized behind one mutex. Async results
// (live snapshots, page fetches, refreshes) may complete in any
// order; results belonging to a closed session are matched by a
// generation counter and silently dropped.
type Session struct {
	chatID   string
	viewerID string

	store     MessageStore
	feed      LiveFeed
	notifier  Notifier
	directory UserDirectory
	log       *logger.Logger
	cfg       Config

	// onUpdate, when set, receives the merged list after every
	// change. It is invoked outside the session lock.
	onUpdate func(messages []Message)

	mu         sync.Mutex
	cache      *Cache
	sub        Subscription
	hasMore    bool
	loading    bool
	refreshing bool
	generation uint64
	closed     bool
}

func New(chatID, viewerID string, store MessageStore, feed LiveFeed, notifier Notifier, directory UserDirectory, log *logger.Logger, cfg Config) *Session {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	if cfg.LiveWindow <= 0 {
		cfg.LiveWindow = DefaultConfig().LiveWindow
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultConfig().CallTimeout
	}
	return &Session{
		chatID:    chatID,
		viewerID:  viewerID,
		store:     store,
		feed:      feed,
		notifier:  notifier,
		directory: directory,
		log:       log,
		cfg:       cfg,
		cache:     NewCache(),
	}
}

// OnUpdate registers the renderer-facing callback. Must be called
// before Open.
func (s *Session) OnUpdate(fn func(messages []Message)) {
	s.onUpdate = fn
}

// Open loads the initial page and starts the live subscription.
func (s *Session) Open(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	page, err := s.store.FetchRecent(cctx, s.chatID, s.cfg.PageSize)
	cancel()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return guild_errors.ErrSessionClosed
	}
	s.cache.Replace(page.Messages)
	s.hasMore = page.HasMore
	update := s.cache.Messages()
	s.mu.Unlock()

	s.publish(update)

	sub, err := s.feed.Subscribe(s.chatID, s.cfg.LiveWindow, s.handleSnapshot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Stop()
		return guild_errors.ErrSessionClosed
	}
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// Close stops the live subscription and marks any in-flight fetch
// results stale. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	s.loading = false
	s.refreshing = false
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Stop()
	}
}

// ChatID returns the chat this session is bound to.
func (s *Session) ChatID() string {
	return s.chatID
}

// Messages returns the merged, time-ordered list.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Messages()
}

// HasMore reports whether older history may remain.
func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// LoadOlder fetches the page preceding the oldest cached message.
// It is a no-op when a fetch is already in flight, history is
// exhausted, or the cache is empty. An empty page marks history
// exhausted for the rest of the session; a fetch error leaves the
// has-more flag untouched so the next scroll retries.
func (s *Session) LoadOlder(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.loading || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	oldest, ok := s.cache.Oldest()
	if !ok {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	gen := s.generation
	s.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	page, err := s.store.FetchOlder(cctx, s.chatID, oldest.CreatedAt, s.cfg.PageSize)
	cancel()

	s.mu.Lock()
	if gen != s.generation {
		// Session closed or switched while the fetch was in
		// flight; the guard was already reset.
		s.mu.Unlock()
		return nil
	}
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		s.errorf("load older messages failed for chat %s: %v", s.chatID, err)
		return err
	}
	if len(page.Messages) == 0 {
		s.hasMore = false
		s.mu.Unlock()
		return nil
	}
	s.cache.ApplyOlder(page.Messages)
	s.hasMore = page.HasMore
	update := s.cache.Messages()
	s.mu.Unlock()

	s.publish(update)
	return nil
}

// Refresh reloads the initial page, replacing the cache wholesale and
// resetting the has-more flag from the fetched page. Concurrent
// refreshes are no-ops. On failure the previous cache is kept and the
// error is only logged to the caller's benefit; there is no partial
// state.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.refreshing {
		s.mu.Unlock()
		return nil
	}
	s.refreshing = true
	gen := s.generation
	s.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	page, err := s.store.FetchRecent(cctx, s.chatID, s.cfg.PageSize)
	cancel()

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil
	}
	s.refreshing = false
	if err != nil {
		s.mu.Unlock()
		s.errorf("refresh failed for chat %s: %v", s.chatID, err)
		return err
	}
	s.cache.Replace(page.Messages)
	s.hasMore = page.HasMore
	update := s.cache.Messages()
	s.mu.Unlock()

	s.publish(update)
	return nil
}

// handleSnapshot is the live feed callback. The cache commit happens
// under the lock; notification dispatch runs after, never gating the
// update.
func (s *Session) handleSnapshot(msgs []Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fresh := s.cache.ApplyLive(msgs)
	update := s.cache.Messages()
	s.mu.Unlock()

	s.publish(update)

	for _, m := range fresh {
		if m.SenderID == s.viewerID {
			continue
		}
		s.dispatchNotification(m)
	}
}

// dispatchNotification resolves the sender name and raises one
// notification for a newly observed foreign message. Any failure is
// logged and swallowed.
func (s *Session) dispatchNotification(m Message) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CallTimeout)
	defer cancel()

	senderName, err := s.directory.DisplayName(ctx, m.SenderID)
	if err != nil {
		s.warnf("skipping notification, sender name lookup failed for %s: %v", m.SenderID, err)
		return
	}

	err = s.notifier.Notify(ctx, Notification{
		ChatID:     m.ChatID,
		SenderID:   m.SenderID,
		SenderName: senderName,
		Body:       NotificationBody(m),
		ViewerID:   s.viewerID,
	})
	if err != nil {
		s.warnf("notification dispatch failed for message %s: %v", m.ID, err)
	}
}

func (s *Session) publish(messages []Message) {
	if s.onUpdate != nil {
		s.onUpdate(messages)
	}
}

func (s *Session) errorf(template string, args ...interface{}) {
	log := s.log
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if log != nil {
		log.Errorf(template, args...)
	}
}

func (s *Session) warnf(template string, args ...interface{}) {
	log := s.log
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if log != nil {
		log.Warnf(template, args...)
	}
}
