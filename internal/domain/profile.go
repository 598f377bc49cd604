package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is keyed by the auth service's user id; rows are provisioned lazily
// the first time an authenticated user touches a profile-bearing endpoint.
type Profile struct {
	UserID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	DisplayName       *string   `gorm:"column:display_name" json:"display_name,omitempty"`
	AvatarURL         *string   `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Bio               *string   `gorm:"column:bio;type:text" json:"bio,omitempty"`
	PreferredLanguage string    `gorm:"not null;default:'en';column:preferred_language" json:"preferred_language"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Profile) TableName() string { return "profiles" }
