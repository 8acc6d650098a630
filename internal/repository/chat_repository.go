package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quickgpt/internal/model"
)

const chatScanBatchSize = 200

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, chat *model.Chat) error {
	if chat.Messages == nil {
		chat.Messages = datatypes.JSONSlice[model.Message]{}
	}
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return fmt.Errorf("create chat failed: %w", err)
	}
	return nil
}

// ListByUserID returns the owner's chats, most recently updated first.
func (r *ChatRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats failed: %w", err)
	}
	return chats, nil
}

func (r *ChatRepository) GetByIDAndUserID(ctx context.Context, chatID, userID uint) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", chatID, userID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat failed: %w", err)
	}
	return &chat, nil
}

// AppendMessages appends to the chat's message sequence and bumps its
// updated_at in one transaction. It reports false when no chat matches the
// (chatID, userID) pair.
func (r *ChatRepository) AppendMessages(ctx context.Context, chatID, userID uint, messages ...model.Message) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		found, err = appendMessages(tx, chatID, userID, messages)
		return err
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// DeleteByIDAndUserID removes the chat and returns the number of rows deleted.
// A chat owned by someone else is left untouched and yields zero.
func (r *ChatRepository) DeleteByIDAndUserID(ctx context.Context, chatID, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", chatID, userID).Delete(&model.Chat{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete chat failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Each walks every chat in storage order (ascending id) in batches.
func (r *ChatRepository) Each(ctx context.Context, fn func(chat model.Chat) error) error {
	var batch []model.Chat
	result := r.db.WithContext(ctx).
		Select("id", "user_id", "user_name", "messages", "updated_at").
		FindInBatches(&batch, chatScanBatchSize, func(tx *gorm.DB, _ int) error {
			for _, chat := range batch {
				if err := fn(chat); err != nil {
					return err
				}
			}
			return nil
		})
	if result.Error != nil {
		return fmt.Errorf("scan chats failed: %w", result.Error)
	}
	return nil
}

func appendMessages(tx *gorm.DB, chatID, userID uint, messages []model.Message) (bool, error) {
	var chat model.Chat
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", chatID, userID).
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock chat failed: %w", err)
	}

	merged := make([]model.Message, 0, len(chat.Messages)+len(messages))
	merged = append(merged, chat.Messages...)
	merged = append(merged, messages...)

	if err := tx.Model(&model.Chat{}).
		Where("id = ?", chat.ID).
		Updates(map[string]any{
			"messages":   datatypes.NewJSONSlice(merged),
			"updated_at": time.Now(),
		}).Error; err != nil {
		return false, fmt.Errorf("save chat messages failed: %w", err)
	}
	return true, nil
}
