package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorlane/mentorlane/internal/mentorshipfile/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, file *domain.File) error {
	return db.WithContext(ctx).Create(file).Error
}

func (r *repo) ListByMentorship(ctx context.Context, db *gorm.DB, mentorshipID snowflake.ID) ([]*domain.File, error) {
	var files []*domain.File
	err := db.WithContext(ctx).
		Model(&domain.File{}).
		Where("mentorship_id = ?", mentorshipID).
		Order("created_at desc").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}
