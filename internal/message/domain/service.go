package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type SendMessageRequest struct {
	RecipientID string
	Content     string
}

type ThreadRequest struct {
	// OtherUserID identifies the conversation partner.
	OtherUserID string
}

type ThreadResponse struct {
	ThreadID string    `json:"thread_id"`
	Messages []Message `json:"messages"`
}

type Service interface {
	Send(context.Context, SendMessageRequest) (Message, error)

	// Thread returns the conversation with the other user, oldest first,
	// and marks the caller's unread messages as read best-effort.
	Thread(context.Context, ThreadRequest) (ThreadResponse, error)

	// UnreadCount counts unread messages addressed to the caller.
	UnreadCount(ctx context.Context) (int64, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, message *Message) error
	ListThread(ctx context.Context, db *gorm.DB, threadID string, userID snowflake.ID) ([]*Message, error)
	MarkRead(ctx context.Context, db *gorm.DB, threadID string, recipientID snowflake.ID) error
	CountUnread(ctx context.Context, db *gorm.DB, recipientID snowflake.ID) (int64, error)
}

var (
	ErrInvalidRecipient = errors.New("invalid_recipient")
	ErrEmptyContent     = errors.New("empty_content")
	ErrForbidden        = errors.New("forbidden")
)
