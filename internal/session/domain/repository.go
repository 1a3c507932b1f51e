package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *Session) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Session, error)
	ListByParticipant(ctx context.Context, db *gorm.DB, column string, userID snowflake.ID) ([]*Session, error)
	ListUpcoming(ctx context.Context, db *gorm.DB, menteeID snowflake.ID, after time.Time, limit int) ([]*Session, error)
	CountByMentee(ctx context.Context, db *gorm.DB, menteeID snowflake.ID, statuses []Status, after *time.Time) (int64, error)
	NextForMentorship(ctx context.Context, db *gorm.DB, mentorshipID snowflake.ID, after time.Time) (*Session, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}
