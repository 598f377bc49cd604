package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserReceivedStory binds a recipient to a SuggestedStory. The unique index on
// (user_id, triggered_by_story_id) enforces at most one delivery per
// submission event at the database, so concurrent retries cannot double-send.
// IsRead transitions false -> true and never back.
type UserReceivedStory struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uniq_received_per_submission" json:"user_id"`
	SourceStoryID      uuid.UUID `gorm:"type:uuid;not null;column:source_story_id" json:"source_story_id"`
	SuggestedStoryID   uuid.UUID `gorm:"type:uuid;not null;column:suggested_story_id" json:"suggested_story_id"`
	TriggeredByStoryID uuid.UUID `gorm:"type:uuid;not null;column:triggered_by_story_id;uniqueIndex:uniq_received_per_submission" json:"triggered_by_story_id"`
	IsRead             bool      `gorm:"not null;default:false;column:is_read" json:"is_read"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (UserReceivedStory) TableName() string { return "user_received_stories" }
