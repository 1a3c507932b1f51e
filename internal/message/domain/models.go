package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Message struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ThreadID    string       `gorm:"not null;index" json:"thread_id"`
	SenderID    snowflake.ID `gorm:"not null" json:"sender_id"`
	RecipientID snowflake.ID `gorm:"not null;index" json:"recipient_id"`
	Content     string       `gorm:"not null" json:"content"`
	IsRead      bool         `gorm:"column:is_read" json:"is_read"`
	ReadAt      *time.Time   `json:"read_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// ThreadID derives the conversation key for a pair of users. It is
// order-independent: both participants resolve the same thread.
func ThreadID(a, b snowflake.ID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return strings.Join(ids, "-")
}
