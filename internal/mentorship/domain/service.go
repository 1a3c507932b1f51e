package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type UpdateMentorshipRequest struct {
	ID            string
	Title         *string
	Goals         *string
	Status        *Status
	Notes         map[string]any
	NextSessionAt *time.Time
}

type ListMentorshipResponse struct {
	Mentorships []Mentorship `json:"mentorships"`
}

type Service interface {
	// EnsureForSubscription provisions the mentorship backing a paid
	// subscription. It is idempotent: a duplicate-key rejection on the
	// subscription reference means the row already exists and is returned
	// as success.
	EnsureForSubscription(ctx context.Context, mentorID, menteeID, subscriptionID snowflake.ID) (Mentorship, error)

	GetByID(ctx context.Context, id snowflake.ID) (Mentorship, error)
	ListAsMentor(ctx context.Context) (ListMentorshipResponse, error)
	ListAsMentee(ctx context.Context) (ListMentorshipResponse, error)
	Update(context.Context, UpdateMentorshipRequest) (Mentorship, error)

	// TouchLastInteraction is best-effort: failures are logged by the
	// caller's service, never propagated.
	TouchLastInteraction(ctx context.Context, id snowflake.ID) error
	SetNextSession(ctx context.Context, id snowflake.ID, at *time.Time) error
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidReference = errors.New("invalid_reference")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not_found")
)
