package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusPaused   Status = "paused"
	StatusCanceled Status = "cancelled"
)

type Subscription struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	MentorID snowflake.ID `gorm:"not null;index:idx_subscriptions_mentee_mentor,priority:2" json:"mentor_id"`
	MenteeID snowflake.ID `gorm:"not null;index:idx_subscriptions_mentee_mentor,priority:1" json:"mentee_id"`
	Status   Status       `gorm:"not null;index:idx_subscriptions_mentee_mentor,priority:3" json:"status"`

	// Provider references. The subscription reference is assigned by the
	// reconciler once the provider reports it; it is the lookup key for
	// subscription-updated/deleted and invoice events.
	ProviderSubscriptionID *string `gorm:"column:provider_subscription_id;uniqueIndex" json:"-"`
	ProviderCustomerID     string  `gorm:"column:provider_customer_id" json:"-"`
	ProviderCheckoutID     string  `gorm:"column:provider_checkout_id" json:"-"`

	MonthlyPrice float64 `gorm:"column:monthly_price" json:"monthly_price"`
	Currency     string  `json:"currency"`

	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	TrialEnd           *time.Time `json:"trial_end,omitempty"`
	CancelAtPeriodEnd  bool       `gorm:"column:cancel_at_period_end" json:"cancel_at_period_end"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
