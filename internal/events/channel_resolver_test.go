package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestResolveChannels(t *testing.T) {
	resolver := NewChatChannelResolver()
	now := time.Now()

	tests := []struct {
		name  string
		event Event
		want  []string
	}{
		{
			"new message goes to the chat channel",
			NewMessageNewEvent("m1", "chat-1", "user-1", "hi", "TEXT", now),
			[]string{"chat:chat-1"},
		},
		{
			"read receipt goes to the chat channel",
			NewMessageReadEvent("chat-1", "user-1"),
			[]string{"chat:chat-1"},
		},
		{
			"typing goes to the chat channel",
			NewTypingEvent("chat-1", "user-1", true),
			[]string{"chat:chat-1"},
		},
		{
			"notification goes to the recipient's user channel",
			&NotificationCreatedEvent{
				BaseEvent: BaseEvent{EventTypeVal: EventNotificationCreated, OccurredAt: now},
				UserID:    "user-9",
			},
			[]string{"user:user-9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.ResolveChannels(tt.event))
		})
	}
}

func TestUnmarshalEventRoundTrips(t *testing.T) {
	event := NewMessageNewEvent("m1", "chat-1", "user-1", "hi", "TEXT", time.Now())
	data := mustMarshal(t, event)

	decoded := UnmarshalEvent(EventMessageNew, data)
	got, ok := decoded.(*MessageNewEvent)
	assert.True(t, ok)
	assert.Equal(t, "m1", got.MessageID)
	assert.Equal(t, "chat-1", got.ChatID)

	assert.Nil(t, UnmarshalEvent(EventType("unknown.event"), data))
}
