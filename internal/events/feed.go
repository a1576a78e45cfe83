package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"guild-chat/internal/session"
	"guild-chat/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisLiveFeed implements session.LiveFeed. Each subscription
// listens on the chat's Redis channel and, on every message event,
// re-reads the most recent window from the store and delivers it as a
// snapshot. The feed never signals end of history; that is the
// pagination path's concern.
type RedisLiveFeed struct {
	client  *redis.Client
	store   session.MessageStore
	log     *logger.Logger
	timeout time.Duration
}

func NewRedisLiveFeed(client *redis.Client, store session.MessageStore, log *logger.Logger, timeout time.Duration) *RedisLiveFeed {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RedisLiveFeed{client: client, store: store, log: log, timeout: timeout}
}

func (f *RedisLiveFeed) Subscribe(chatID string, limit int, handler func(messages []session.Message)) (session.Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())
	pubsub := f.client.Subscribe(ctx, ChatChannel(chatID))
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		pubsub.Close()
		return nil, err
	}

	sub := &feedSubscription{cancel: cancel, pubsub: pubsub}
	go f.run(ctx, pubsub, chatID, limit, handler)
	return sub, nil
}

func (f *RedisLiveFeed) run(ctx context.Context, pubsub *redis.PubSub, chatID string, limit int, handler func(messages []session.Message)) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var base BaseEvent
			if err := json.Unmarshal([]byte(msg.Payload), &base); err != nil {
				continue
			}
			switch base.EventTypeVal {
			case EventMessageNew, EventMessageRead:
			default:
				continue
			}

			f.deliver(ctx, chatID, limit, handler)
		}
	}
}

func (f *RedisLiveFeed) deliver(ctx context.Context, chatID string, limit int, handler func(messages []session.Message)) {
	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	page, err := f.store.FetchRecent(cctx, chatID, limit)
	cancel()
	if err != nil {
		// Keep the last delivered state; the next event retries.
		f.log.Errorf("live feed snapshot failed for chat %s: %v", chatID, err)
		return
	}
	handler(page.Messages)
}

type feedSubscription struct {
	cancel context.CancelFunc
	pubsub *redis.PubSub
	once   sync.Once
}

func (s *feedSubscription) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.pubsub.Close()
	})
}
