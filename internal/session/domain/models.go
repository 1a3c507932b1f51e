package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Session struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	MentorshipID *snowflake.ID `gorm:"index" json:"mentorship_id,omitempty"`
	MentorID     snowflake.ID  `gorm:"not null;index" json:"mentor_id"`
	MenteeID     snowflake.ID  `gorm:"not null;index" json:"mentee_id"`

	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	SessionType     string    `gorm:"column:session_type" json:"session_type"`
	ScheduledAt     time.Time `gorm:"not null" json:"scheduled_at"`
	DurationMinutes int       `gorm:"column:duration_minutes" json:"duration_minutes"`
	Timezone        string    `json:"timezone"`
	Status          Status    `gorm:"not null" json:"status"`
	MeetingURL      string    `gorm:"column:meeting_url" json:"meeting_url,omitempty"`

	PricePaid          float64 `gorm:"column:price_paid" json:"price_paid"`
	Currency           string  `json:"currency"`
	ProviderCheckoutID string  `gorm:"column:provider_checkout_id" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
