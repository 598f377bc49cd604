package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StoryEmbedding is the derived artifact of an approved story: its vector plus
// the (archetype, emotion_tone) classification. One row per story. Vectors
// from different embedding models have different dimensionality and are never
// compared against each other; EmbedModel records which model produced it.
type StoryEmbedding struct {
	StoryID     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"story_id"`
	Embedding   datatypes.JSON `gorm:"column:embedding;type:jsonb;not null;default:'[]'" json:"embedding"`
	Archetype   string         `gorm:"not null;index" json:"archetype"`
	EmotionTone string         `gorm:"not null;column:emotion_tone;index" json:"emotion_tone"`
	EmbedModel  string         `gorm:"column:embed_model" json:"embed_model"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (StoryEmbedding) TableName() string { return "stories_embeddings" }

// Vector decodes the stored JSON array. A decode failure or empty column
// yields nil, which the matcher treats as "no candidate".
func (e *StoryEmbedding) Vector() []float32 {
	if e == nil || len(e.Embedding) == 0 {
		return nil
	}
	var v []float32
	if err := json.Unmarshal(e.Embedding, &v); err != nil {
		return nil
	}
	return v
}

func EncodeVector(v []float32) datatypes.JSON {
	if v == nil {
		v = []float32{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}
