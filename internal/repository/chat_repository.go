package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"guild-chat/internal/domain/chat"
	guild_errors "guild-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &PostgresChatRepository{db: db}
}

func (r *PostgresChatRepository) Create(ctx context.Context, c *chat.Chat, participantIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return guild_errors.ErrAlreadyExists
			}
			return err
		}
		now := time.Now()
		for _, userID := range participantIDs {
			p := &chat.Participant{
				ChatID:   c.ID,
				UserID:   userID,
				JoinedAt: now,
			}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresChatRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	var c chat.Chat
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Chat{}, guild_errors.ErrNotFound
		}
		return chat.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) GetDirectChat(ctx context.Context, userA, userB uuid.UUID) (chat.Chat, error) {
	var c chat.Chat

	pairQuery := r.db.Model(&chat.Participant{}).
		Select("chat_id").
		Where("user_id IN ?", []uuid.UUID{userA, userB}).
		Group("chat_id").
		Having("COUNT(DISTINCT user_id) = 2")

	err := r.db.WithContext(ctx).
		Where("kind = ? AND id IN (?)", chat.KindDirect, pairQuery).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Chat{}, guild_errors.ErrNotFound
		}
		return chat.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) GetUserChats(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	var chats []chat.Chat

	memberQuery := r.db.Model(&chat.Participant{}).
		Select("chat_id").
		Where("user_id = ?", userID)

	err := r.db.WithContext(ctx).
		Where("id IN (?)", memberQuery).
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *PostgresChatRepository) GetParticipants(ctx context.Context, chatID uuid.UUID) ([]chat.Participant, error) {
	var participants []chat.Participant
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *PostgresChatRepository) GetParticipant(ctx context.Context, chatID, userID uuid.UUID) (chat.Participant, error) {
	var p chat.Participant
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Participant{}, guild_errors.ErrNotFound
		}
		return chat.Participant{}, err
	}
	return p, nil
}

func (r *PostgresChatRepository) IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&chat.Participant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresChatRepository) UpdateLastMessage(ctx context.Context, chatID uuid.UUID, text string, senderID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"last_message_text":   sql.NullString{String: text, Valid: true},
			"last_message_sender": uuid.NullUUID{UUID: senderID, Valid: true},
			"last_message_at":     sql.NullTime{Time: at, Valid: true},
			"updated_at":          at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return guild_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) IncrementUnread(ctx context.Context, chatID, senderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&chat.Participant{}).
		Where("chat_id = ? AND user_id != ?", chatID, senderID).
		Update("unread_count", gorm.Expr("unread_count + 1")).Error
}

func (r *PostgresChatRepository) ResetUnread(ctx context.Context, chatID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&chat.Participant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Update("unread_count", 0).Error
}
