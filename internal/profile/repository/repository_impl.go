package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorlane/mentorlane/internal/profile/domain"
	"github.com/mentorlane/mentorlane/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, profile *domain.Profile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Profile, error) {
	var profile domain.Profile
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repo) FindMentorBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Profile, error) {
	var profile domain.Profile
	err := db.WithContext(ctx).
		Where("slug = ?", slug).
		Where("role IN ?", []domain.Role{domain.RoleMentor, domain.RoleBoth}).
		Take(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) ListMentors(ctx context.Context, db *gorm.DB, filter domain.ListMentorFilter, page pagination.Pagination) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	stmt := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("role IN ?", []domain.Role{domain.RoleMentor, domain.RoleBoth})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		stmt = stmt.Where("LOWER(full_name) LIKE ? OR LOWER(bio) LIKE ?", like, like)
	}
	if len(filter.Topics) > 0 {
		// Topic overlap against the JSON-encoded topics column. Works on
		// both jsonb and text-backed JSON columns.
		overlap := db.Session(&gorm.Session{NewDB: true})
		for _, topic := range filter.Topics {
			topic = strings.TrimSpace(topic)
			if topic == "" {
				continue
			}
			overlap = overlap.Or("CAST(topics AS TEXT) LIKE ?", `%"`+topic+`"%`)
		}
		stmt = stmt.Where(overlap)
	}
	if level := strings.TrimSpace(filter.ExperienceLevel); level != "" {
		stmt = stmt.Where("experience_level = ?", level)
	}
	if filter.IsAvailable != nil {
		stmt = stmt.Where("is_available = ?", *filter.IsAvailable)
	}
	stmt = pagination.Apply(stmt, page)
	err := stmt.
		Order("average_rating desc, created_at desc, id desc").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
