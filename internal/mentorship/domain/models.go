package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusEnded  Status = "ended"
)

// DefaultTitle is assigned to auto-provisioned mentorships.
const DefaultTitle = "Mentorship Program"

type Mentorship struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`

	// SubscriptionID is nil for legacy rows; the unique index is what makes
	// webhook-driven provisioning idempotent.
	SubscriptionID *snowflake.ID `gorm:"uniqueIndex" json:"subscription_id,omitempty"`

	MentorID snowflake.ID      `gorm:"not null;index" json:"mentor_id"`
	MenteeID snowflake.ID      `gorm:"not null;index" json:"mentee_id"`
	Status   Status            `gorm:"not null" json:"status"`
	Title    string            `json:"title"`
	Goals    string            `json:"goals,omitempty"`
	Notes    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"notes,omitempty"`

	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty"`
	NextSessionAt     *time.Time `json:"next_session_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
