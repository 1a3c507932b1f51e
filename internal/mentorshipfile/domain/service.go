package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateFileRequest struct {
	MentorshipID string
	Filename     string
	FileSize     int64
	FileType     string
	Description  string
}

type ListFilesResponse struct {
	Files []File `json:"files"`
}

type Service interface {
	// Create records file metadata and allocates a storage path; it bumps
	// the mentorship's last-interaction timestamp best-effort.
	Create(context.Context, CreateFileRequest) (File, error)
	List(ctx context.Context, mentorshipID snowflake.ID) (ListFilesResponse, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, file *File) error
	ListByMentorship(ctx context.Context, db *gorm.DB, mentorshipID snowflake.ID) ([]*File, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidFilename = errors.New("invalid_filename")
	ErrForbidden       = errors.New("forbidden")
)
