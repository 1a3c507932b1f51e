package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorlane/mentorlane/pkg/db/pagination"
)

type CreateProfileRequest struct {
	FullName        string
	Email           string
	Bio             string
	Role            Role
	AvatarURL       string
	ExperienceLevel string
	Topics          []string
	LanguagesSpoken []string
	MonthlyRate     float64
	Currency        string
	IsAvailable     bool
}

type UpdateProfileRequest struct {
	ID              string
	FullName        *string
	Bio             *string
	Role            *Role
	AvatarURL       *string
	ExperienceLevel *string
	Topics          []string
	LanguagesSpoken []string
	MonthlyRate     *float64
	IsAvailable     *bool
}

type ListMentorRequest struct {
	PageToken       string
	PageSize        int32
	Search          string
	Topics          []string
	ExperienceLevel string
	IsAvailable     *bool
}

type ListMentorFilter struct {
	Search          string
	Topics          []string
	ExperienceLevel string
	IsAvailable     *bool
}

type ListMentorResponse struct {
	pagination.PageInfo
	Mentors []Profile `json:"mentors"`
}

type Service interface {
	Create(context.Context, CreateProfileRequest) (Profile, error)
	GetByID(ctx context.Context, id snowflake.ID) (Profile, error)
	GetMentorBySlug(ctx context.Context, slug string) (Profile, error)
	Update(context.Context, UpdateProfileRequest) (Profile, error)
	ListMentors(context.Context, ListMentorRequest) (ListMentorResponse, error)

	// SaveBillingRefs caches provider product/price identifiers after lazy
	// provisioning so later checkouts reuse them.
	SaveBillingRefs(ctx context.Context, id snowflake.ID, productID, priceID string) error
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidRole  = errors.New("invalid_role")
	ErrInvalidRate  = errors.New("invalid_rate")
	ErrInvalidID    = errors.New("invalid_id")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not_found")
)
