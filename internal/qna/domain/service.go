package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreatePostRequest struct {
	MentorshipID string
	Title        string
	Content      string
	PostType     string
	IsPinned     bool
}

type CreateReplyRequest struct {
	PostID           string
	Content          string
	IsAcceptedAnswer bool
}

type ListPostsResponse struct {
	Posts []Post `json:"posts"`
}

type Service interface {
	// CreatePost adds a question or note to a mentorship board and bumps
	// the mentorship's last-interaction timestamp best-effort.
	CreatePost(context.Context, CreatePostRequest) (Post, error)

	// CreateReply answers a post; an accepted answer marks the post
	// answered.
	CreateReply(context.Context, CreateReplyRequest) (Reply, error)

	// ListPosts returns a mentorship's posts with replies, pinned first.
	ListPosts(ctx context.Context, mentorshipID snowflake.ID) (ListPostsResponse, error)
}

type Repository interface {
	InsertPost(ctx context.Context, db *gorm.DB, post *Post) error
	InsertReply(ctx context.Context, db *gorm.DB, reply *Reply) error
	FindPostByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Post, error)
	ListPosts(ctx context.Context, db *gorm.DB, mentorshipID snowflake.ID) ([]*Post, error)
	ListReplies(ctx context.Context, db *gorm.DB, postIDs []snowflake.ID) ([]*Reply, error)
	MarkPostAnswered(ctx context.Context, db *gorm.DB, postID snowflake.ID) error
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidTitle = errors.New("invalid_title")
	ErrEmptyContent = errors.New("empty_content")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not_found")
)
