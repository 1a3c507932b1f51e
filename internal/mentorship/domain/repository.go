package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, mentorship *Mentorship) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Mentorship, error)
	FindBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID) (*Mentorship, error)
	ListByMentor(ctx context.Context, db *gorm.DB, mentorID snowflake.ID) ([]*Mentorship, error)
	ListByMentee(ctx context.Context, db *gorm.DB, menteeID snowflake.ID) ([]*Mentorship, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}
