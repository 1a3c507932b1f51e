package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleMentor Role = "mentor"
	RoleMentee Role = "mentee"
	RoleBoth   Role = "both"
)

func (r Role) CanMentor() bool {
	return r == RoleMentor || r == RoleBoth
}

type Profile struct {
	ID              snowflake.ID                `gorm:"primaryKey" json:"id"`
	FullName        string                      `gorm:"not null" json:"full_name"`
	Email           string                      `gorm:"not null" json:"email"`
	Bio             string                      `json:"bio,omitempty"`
	Role            Role                        `gorm:"not null;index" json:"role"`
	Slug            string                      `gorm:"uniqueIndex" json:"slug,omitempty"`
	AvatarURL       string                      `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	ExperienceLevel string                      `json:"experience_level,omitempty"`
	Topics          datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"topics,omitempty"`
	LanguagesSpoken datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"languages_spoken,omitempty"`
	MonthlyRate     float64                     `gorm:"column:monthly_rate" json:"monthly_rate"`
	Currency        string                      `json:"currency,omitempty"`
	IsAvailable     bool                        `gorm:"column:is_available" json:"is_available"`
	AverageRating   float64                     `gorm:"column:average_rating" json:"average_rating"`

	// Billing provider references, lazily provisioned on first checkout.
	ProviderProductID  string `gorm:"column:provider_product_id" json:"-"`
	ProviderPriceID    string `gorm:"column:provider_price_id" json:"-"`
	ProviderCustomerID string `gorm:"column:provider_customer_id" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
