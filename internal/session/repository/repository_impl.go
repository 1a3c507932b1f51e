package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorlane/mentorlane/internal/session/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *repo) ListByParticipant(ctx context.Context, db *gorm.DB, column string, userID snowflake.ID) ([]*domain.Session, error) {
	var sessions []*domain.Session
	err := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where(column+" = ?", userID).
		Order("scheduled_at desc").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) ListUpcoming(ctx context.Context, db *gorm.DB, menteeID snowflake.ID, after time.Time, limit int) ([]*domain.Session, error) {
	var sessions []*domain.Session
	err := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("mentee_id = ? AND status = ? AND scheduled_at >= ?", menteeID, domain.StatusConfirmed, after).
		Order("scheduled_at asc").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) CountByMentee(ctx context.Context, db *gorm.DB, menteeID snowflake.ID, statuses []domain.Status, after *time.Time) (int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("mentee_id = ?", menteeID)
	if len(statuses) > 0 {
		stmt = stmt.Where("status IN ?", statuses)
	}
	if after != nil {
		stmt = stmt.Where("scheduled_at >= ?", *after)
	}
	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) NextForMentorship(ctx context.Context, db *gorm.DB, mentorshipID snowflake.ID, after time.Time) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).
		Where("mentorship_id = ? AND status = ? AND scheduled_at >= ?", mentorshipID, domain.StatusConfirmed, after).
		Order("scheduled_at asc").
		Take(&session).Error
	if err == gorm.ErrRecordNotFound {
		err = db.WithContext(ctx).
			Where("mentorship_id = ? AND status = ? AND scheduled_at >= ?", mentorshipID, domain.StatusPending, after).
			Order("scheduled_at asc").
			Take(&session).Error
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Updates(fields).Error
}
