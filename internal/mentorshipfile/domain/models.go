package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// File is metadata only; blob storage lives elsewhere and is addressed by
// StoragePath/StorageURL.
type File struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	MentorshipID snowflake.ID `gorm:"not null;index" json:"mentorship_id"`
	UploadedBy   snowflake.ID `gorm:"column:uploaded_by;not null" json:"uploaded_by"`
	Filename     string       `gorm:"not null" json:"filename"`
	FileSize     int64        `gorm:"column:file_size" json:"file_size"`
	FileType     string       `gorm:"column:file_type" json:"file_type"`
	StoragePath  string       `gorm:"column:storage_path;not null" json:"storage_path"`
	StorageURL   string       `gorm:"column:storage_url" json:"storage_url,omitempty"`
	Description  string       `json:"description,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (File) TableName() string { return "mentorship_files" }
