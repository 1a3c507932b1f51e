package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateSessionRequest struct {
	MentorID        string
	MentorshipID    string
	Title           string
	Description     string
	SessionType     string
	ScheduledAt     time.Time
	DurationMinutes int
	Timezone        string
	Price           float64
	Currency        string
}

type UpdateSessionRequest struct {
	ID         string
	Status     *Status
	MeetingURL *string
}

type ListSessionRequest struct {
	// AsMentor lists sessions where the caller mentors; default is the
	// mentee view.
	AsMentor bool
}

type ListSessionResponse struct {
	Sessions []Session `json:"sessions"`
}

type Service interface {
	Create(context.Context, CreateSessionRequest) (Session, error)
	GetByID(ctx context.Context, id snowflake.ID) (Session, error)
	List(context.Context, ListSessionRequest) (ListSessionResponse, error)
	Update(context.Context, UpdateSessionRequest) (Session, error)

	// SaveCheckoutRef persists the provider checkout-session reference.
	SaveCheckoutRef(ctx context.Context, id snowflake.ID, checkoutID string) error

	// NextForMentorship returns the earliest upcoming confirmed (falling
	// back to pending) session, or nil when none is scheduled.
	NextForMentorship(ctx context.Context, mentorshipID snowflake.ID) (*Session, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidMentor   = errors.New("invalid_mentor")
	ErrInvalidSchedule = errors.New("invalid_schedule")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not_found")
)
