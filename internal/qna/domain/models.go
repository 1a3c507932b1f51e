package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Post struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	MentorshipID snowflake.ID `gorm:"not null;index" json:"mentorship_id"`
	AuthorID     snowflake.ID `gorm:"not null" json:"author_id"`
	Title        string       `gorm:"not null" json:"title"`
	Content      string       `gorm:"not null" json:"content"`
	PostType     string       `gorm:"column:post_type" json:"post_type"`
	IsPinned     bool         `gorm:"column:is_pinned" json:"is_pinned"`
	IsAnswered   bool         `gorm:"column:is_answered" json:"is_answered"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Replies []Reply `gorm:"-" json:"replies,omitempty"`
}

func (Post) TableName() string { return "mentorship_qna_posts" }

type Reply struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	PostID           snowflake.ID `gorm:"not null;index" json:"post_id"`
	AuthorID         snowflake.ID `gorm:"not null" json:"author_id"`
	Content          string       `gorm:"not null" json:"content"`
	IsAcceptedAnswer bool         `gorm:"column:is_accepted_answer" json:"is_accepted_answer"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Reply) TableName() string { return "mentorship_qna_replies" }
