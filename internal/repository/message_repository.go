package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"guild-chat/internal/domain/message"
	guild_errors "guild-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return guild_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, guild_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) GetByClientMessageID(ctx context.Context, chatID uuid.UUID, clientMessageID string) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND client_message_id = ?", chatID, clientMessageID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, guild_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) GetRecent(ctx context.Context, chatID uuid.UUID, limit int) ([]message.Message, bool, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND deleted_at IS NULL", chatID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&messages).Error
	if err != nil {
		return nil, false, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	reverse(messages)
	return messages, hasMore, nil
}

func (r *PostgresMessageRepository) GetOlder(ctx context.Context, chatID uuid.UUID, before time.Time, limit int) ([]message.Message, bool, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND created_at < ? AND deleted_at IS NULL", chatID, before).
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&messages).Error
	if err != nil {
		return nil, false, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	reverse(messages)
	return messages, hasMore, nil
}

func (r *PostgresMessageRepository) GetReadBy(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	if len(messageIDs) == 0 {
		return map[uuid.UUID][]uuid.UUID{}, nil
	}

	var receipts []message.MessageReceipt
	err := r.db.WithContext(ctx).
		Where("message_id IN ? AND read_at IS NOT NULL", messageIDs).
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}

	readBy := make(map[uuid.UUID][]uuid.UUID, len(messageIDs))
	for _, receipt := range receipts {
		readBy[receipt.MessageID] = append(readBy[receipt.MessageID], receipt.UserID)
	}
	return readBy, nil
}

func (r *PostgresMessageRepository) GetUnreadMessages(ctx context.Context, chatID, userID uuid.UUID) ([]message.Message, error) {
	var messages []message.Message

	// Messages that don't have a read receipt from this user
	subQuery := r.db.Model(&message.MessageReceipt{}).
		Select("message_id").
		Where("user_id = ? AND read_at IS NOT NULL", userID)

	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND sender_id != ? AND deleted_at IS NULL AND id NOT IN (?)",
			chatID, userID, subQuery).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) BulkMarkAsRead(ctx context.Context, messageIDs []uuid.UUID, userID uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, msgID := range messageIDs {
			res := tx.Model(&message.MessageReceipt{}).
				Where("message_id = ? AND user_id = ?", msgID, userID).
				Updates(map[string]interface{}{
					"status":     message.StatusRead,
					"read_at":    now,
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				receipt := &message.MessageReceipt{
					MessageID: msgID,
					UserID:    userID,
					Status:    message.StatusRead,
					ReadAt:    toNullTime(now),
					UpdatedAt: now,
				}
				if err := tx.Create(receipt).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *PostgresMessageRepository) UpdateText(ctx context.Context, messageID uuid.UUID, text string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ? AND deleted_at IS NULL", messageID).
		Updates(map[string]interface{}{
			"text":      sql.NullString{String: text, Valid: true},
			"edited_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return guild_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ?", id).
		Update("deleted_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return guild_errors.ErrNotFound
	}
	return nil
}

func reverse(messages []message.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}

func toNullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}
