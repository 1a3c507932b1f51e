package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorlane/mentorlane/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *Profile) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Profile, error)
	FindMentorBySlug(ctx context.Context, db *gorm.DB, slug string) (*Profile, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	ListMentors(ctx context.Context, db *gorm.DB, filter ListMentorFilter, page pagination.Pagination) ([]*Profile, error)
}
