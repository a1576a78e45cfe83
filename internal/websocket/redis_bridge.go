package websocket

import (
	"context"
	"encoding/json"

	"guild-chat/internal/events"
	"guild-chat/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBridge fans Redis pub/sub traffic into hub channels. It only
// forwards typing indicators and notification pushes; message events
// reach sockets as session snapshots instead of raw payloads.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
	log    *logger.Logger
}

func NewRedisBridge(client *redis.Client, hub *Hub, log *logger.Logger) *RedisBridge {
	return &RedisBridge{client: client, hub: hub, log: log}
}

// Run blocks until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, "chat:*", "user:*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(msg.Channel, []byte(msg.Payload))
		}
	}
}

func (b *RedisBridge) forward(channel string, payload []byte) {
	var base events.BaseEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		b.log.Warnf("dropping malformed event on %s: %v", channel, err)
		return
	}

	switch base.EventTypeVal {
	case events.EventTypingStarted, events.EventTypingStopped, events.EventNotificationCreated:
		b.hub.Broadcast(channel, payload)
	}
}
