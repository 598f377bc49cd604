package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reaction rows toggle: inserting an existing (suggested, user, type) triple
// removes it instead.
type Reaction struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SuggestedID uuid.UUID `gorm:"type:uuid;not null;column:suggested_id;uniqueIndex:uniq_reaction_toggle" json:"suggested_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_reaction_toggle" json:"user_id"`
	Type        string    `gorm:"not null;uniqueIndex:uniq_reaction_toggle" json:"type"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Reaction) TableName() string { return "reactions" }

type Comment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SuggestedID uuid.UUID `gorm:"type:uuid;not null;column:suggested_id;index" json:"suggested_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Text        string    `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }

type Report struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SuggestedID uuid.UUID `gorm:"type:uuid;not null;column:suggested_id;index" json:"suggested_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Reason      string    `gorm:"type:text;not null" json:"reason"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Report) TableName() string { return "reports" }

// Follow rejects follower == followed at the service layer; the unique index
// keeps repeat follows idempotent.
type Follow struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Follower uuid.UUID `gorm:"type:uuid;not null;column:follower;uniqueIndex:uniq_follow_pair" json:"follower"`
	Followed uuid.UUID `gorm:"type:uuid;not null;column:followed;uniqueIndex:uniq_follow_pair" json:"followed"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Follow) TableName() string { return "follows" }
