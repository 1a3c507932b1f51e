package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorlane/mentorlane/internal/message/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, message *domain.Message) error {
	return db.WithContext(ctx).Create(message).Error
}

func (r *repo) ListThread(ctx context.Context, db *gorm.DB, threadID string, userID snowflake.ID) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("thread_id = ?", threadID).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, threadID string, recipientID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("thread_id = ? AND recipient_id = ? AND is_read = ?", threadID, recipientID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": time.Now().UTC(),
		}).Error
}

func (r *repo) CountUnread(ctx context.Context, db *gorm.DB, recipientID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
