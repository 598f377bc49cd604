package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	GenerationMatched  = "matched"
	GenerationFallback = "ai_generated_fallback"
)

// SuggestedStory is a delivered artifact: either a rewritten+translated
// rendition of a matched story, or a synthetic fallback narrative. It has no
// single owner and is immutable once created; the same row may be reused for
// every recipient requesting the same (source story, language) pair.
type SuggestedStory struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SourceStoryID  uuid.UUID `gorm:"type:uuid;not null;column:source_story_id;index:idx_suggested_source_lang" json:"source_story_id"`
	TargetLanguage string    `gorm:"not null;column:target_language;index:idx_suggested_source_lang" json:"target_language"`
	RewrittenText  string    `gorm:"type:text;not null;column:rewritten_text" json:"rewritten_text"`
	AudioURL       *string   `gorm:"column:audio_url" json:"audio_url,omitempty"`

	// GenerationType is exactly one of GenerationMatched or GenerationFallback.
	GenerationType string         `gorm:"not null;column:generation_type;index" json:"generation_type"`
	Similarity     *float64       `gorm:"column:similarity" json:"similarity,omitempty"`
	ModelVersions  datatypes.JSON `gorm:"column:model_versions;type:jsonb;not null;default:'{}'" json:"model_versions"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (SuggestedStory) TableName() string { return "suggested_stories" }
