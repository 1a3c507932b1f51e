package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	FindActiveByPair(ctx context.Context, db *gorm.DB, mentorID, menteeID snowflake.ID) (*Subscription, error)
	FindByProviderSubscriptionID(ctx context.Context, db *gorm.DB, providerID string) (*Subscription, error)
	ListByMentee(ctx context.Context, db *gorm.DB, menteeID snowflake.ID, statuses []Status) ([]*Subscription, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}
