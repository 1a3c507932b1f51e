package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type SubscribeRequest struct {
	MentorID string
}

type ListSubscriptionRequest struct {
	Statuses []Status
}

type ListSubscriptionResponse struct {
	Subscriptions []Subscription `json:"subscriptions"`
}

type CancelRequest struct {
	SubscriptionID string
}

type ReactivateRequest struct {
	SubscriptionID string
}

// ReconcileUpdate carries provider-reported state applied by the webhook
// reconciler. Nil pointers leave the stored column untouched, except when
// AuthoritativeTimestamps is set: then nil timestamps clear the stored
// value, because the snapshot carries the provider's complete timestamp
// state and an absent field means the provider nulled it (a reactivated
// subscription loses its canceled_at this way).
type ReconcileUpdate struct {
	Status                  *Status
	ProviderSubscriptionID  *string
	ProviderCustomerID      *string
	CurrentPeriodStart      *time.Time
	CurrentPeriodEnd        *time.Time
	TrialEnd                *time.Time
	CancelAtPeriodEnd       *bool
	CanceledAt              *time.Time
	AuthoritativeTimestamps bool
}

type Service interface {
	// Subscribe creates a pending subscription for the caller against the
	// mentor, rejecting duplicate active pairs. Activation happens through
	// the payment reconciler, never here.
	Subscribe(context.Context, SubscribeRequest) (Subscription, error)
	List(context.Context, ListSubscriptionRequest) (ListSubscriptionResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (Subscription, error)
	Cancel(context.Context, CancelRequest) (Subscription, error)
	Reactivate(context.Context, ReactivateRequest) (Subscription, error)

	// Reconciler-facing operations, keyed the two ways events arrive.
	FindForReconcile(ctx context.Context, id snowflake.ID) (*Subscription, error)
	FindByProviderRef(ctx context.Context, providerSubscriptionID string) (*Subscription, error)
	ApplyReconcile(ctx context.Context, id snowflake.ID, update ReconcileUpdate) error

	// SaveCheckoutRef persists the provider checkout-session reference.
	SaveCheckoutRef(ctx context.Context, id snowflake.ID, checkoutID string) error
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidMentor     = errors.New("invalid_mentor")
	ErrSelfSubscribe     = errors.New("self_subscribe")
	ErrMentorNotPriced   = errors.New("mentor_not_priced")
	ErrAlreadySubscribed = errors.New("already_subscribed")
	ErrNotActive         = errors.New("not_active")
	ErrNotCancelling     = errors.New("not_cancelling")
	ErrNoProviderRef     = errors.New("no_provider_ref")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not_found")
)
