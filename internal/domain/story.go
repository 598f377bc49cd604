package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	StoryStatusPending  = "pending"
	StoryStatusApproved = "approved"
	StoryStatusRejected = "rejected"
)

// Story is a submitted narrative. Only approved stories are visible to the
// matching pipeline. Status transitions once (AI gate or moderator action);
// the row is immutable afterwards except for status.
type Story struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Language string    `gorm:"not null;column:language" json:"language"`
	Text     string    `gorm:"type:text;not null;column:text" json:"text"`
	Status   string    `gorm:"not null;default:'pending';index" json:"status"`
	Consent  bool      `gorm:"not null;default:false" json:"consent"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Story) TableName() string { return "stories" }
