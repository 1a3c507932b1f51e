package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorlane/mentorlane/internal/mentorship/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, mentorship *domain.Mentorship) error {
	return db.WithContext(ctx).Create(mentorship).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Mentorship, error) {
	var mentorship domain.Mentorship
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&mentorship).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &mentorship, nil
}

func (r *repo) FindBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID) (*domain.Mentorship, error) {
	var mentorship domain.Mentorship
	err := db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Take(&mentorship).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &mentorship, nil
}

func (r *repo) ListByMentor(ctx context.Context, db *gorm.DB, mentorID snowflake.ID) ([]*domain.Mentorship, error) {
	return r.list(ctx, db, "mentor_id = ?", mentorID)
}

func (r *repo) ListByMentee(ctx context.Context, db *gorm.DB, menteeID snowflake.ID) ([]*domain.Mentorship, error) {
	return r.list(ctx, db, "mentee_id = ?", menteeID)
}

func (r *repo) list(ctx context.Context, db *gorm.DB, cond string, id snowflake.ID) ([]*domain.Mentorship, error) {
	var mentorships []*domain.Mentorship
	err := db.WithContext(ctx).
		Model(&domain.Mentorship{}).
		Where(cond, id).
		// IS NULL sorts never-touched mentorships last on every dialect;
		// NULLS LAST is postgres-only.
		Order("last_interaction_at IS NULL, last_interaction_at desc, created_at desc").
		Find(&mentorships).Error
	if err != nil {
		return nil, err
	}
	return mentorships, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.Mentorship{}).
		Where("id = ?", id).
		Updates(fields).Error
}
