package websocket

import (
	"context"
	"strings"

	"guild-chat/internal/repository"

	"github.com/google/uuid"
)

// ChannelAuthorizer decides which channels a socket may subscribe to.
type ChannelAuthorizer struct {
	chatRepo repository.ChatRepository
}

func NewChannelAuthorizer(chatRepo repository.ChatRepository) *ChannelAuthorizer {
	return &ChannelAuthorizer{chatRepo: chatRepo}
}

// CanSubscribe allows a user's own channel unconditionally and chat
// channels only for participants. Everything else is denied.
func (a *ChannelAuthorizer) CanSubscribe(ctx context.Context, userID string, channel string) (bool, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}

	if channel == "user:"+userID {
		return true, nil
	}

	if strings.HasPrefix(channel, "chat:") {
		chatIDStr := strings.TrimPrefix(channel, "chat:")
		chatID, err := uuid.Parse(chatIDStr)
		if err != nil {
			return false, nil
		}
		return a.chatRepo.IsParticipant(ctx, chatID, userUUID)
	}

	return false, nil
}
