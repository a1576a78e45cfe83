package events

import (
	"fmt"
)

// ChannelResolver determines which Redis channels to publish to
type ChannelResolver interface {
	ResolveChannels(event Event) []string
}

// ChatChannelResolver routes chat-scoped events to the chat channel
// and notifications to the recipient's user channel.
type ChatChannelResolver struct{}

func NewChatChannelResolver() *ChatChannelResolver {
	return &ChatChannelResolver{}
}

func ChatChannel(chatID string) string {
	return fmt.Sprintf("chat:%s", chatID)
}

func UserChannel(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

func (r *ChatChannelResolver) ResolveChannels(event Event) []string {
	switch e := event.(type) {
	case *MessageNewEvent:
		return []string{ChatChannel(e.ChatID)}
	case *MessageReadEvent:
		return []string{ChatChannel(e.ChatID)}
	case *TypingEvent:
		return []string{ChatChannel(e.ChatID)}
	case *NotificationCreatedEvent:
		return []string{UserChannel(e.UserID)}
	}
	return nil
}
