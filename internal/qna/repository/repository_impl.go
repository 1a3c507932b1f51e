package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorlane/mentorlane/internal/qna/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPost(ctx context.Context, db *gorm.DB, post *domain.Post) error {
	return db.WithContext(ctx).Create(post).Error
}

func (r *repo) InsertReply(ctx context.Context, db *gorm.DB, reply *domain.Reply) error {
	return db.WithContext(ctx).Create(reply).Error
}

func (r *repo) FindPostByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Post, error) {
	var post domain.Post
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&post).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *repo) ListPosts(ctx context.Context, db *gorm.DB, mentorshipID snowflake.ID) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("mentorship_id = ?", mentorshipID).
		Order("is_pinned desc, created_at desc").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repo) ListReplies(ctx context.Context, db *gorm.DB, postIDs []snowflake.ID) ([]*domain.Reply, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var replies []*domain.Reply
	err := db.WithContext(ctx).
		Model(&domain.Reply{}).
		Where("post_id IN ?", postIDs).
		Order("created_at asc").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *repo) MarkPostAnswered(ctx context.Context, db *gorm.DB, postID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("id = ?", postID).
		Update("is_answered", true).Error
}
