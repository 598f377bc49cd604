package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedStory(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) *types.Story {
	tb.Helper()
	s := &types.Story{
		ID:       uuid.New(),
		UserID:   userID,
		Language: "en",
		Text:     "seed story",
		Status:   status,
		Consent:  true,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed story: %v", err)
	}
	return s
}

func SeedEmbedding(tb testing.TB, ctx context.Context, tx *gorm.DB, storyID uuid.UUID, vec []float32, archetype, tone string) *types.StoryEmbedding {
	tb.Helper()
	e := &types.StoryEmbedding{
		StoryID:     storyID,
		Embedding:   types.EncodeVector(vec),
		Archetype:   archetype,
		EmotionTone: tone,
		EmbedModel:  "test-embed",
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed embedding: %v", err)
	}
	return e
}

func SeedSuggestion(tb testing.TB, ctx context.Context, tx *gorm.DB, sourceStoryID uuid.UUID, language, generationType string) *types.SuggestedStory {
	tb.Helper()
	s := &types.SuggestedStory{
		ID:             uuid.New(),
		SourceStoryID:  sourceStoryID,
		TargetLanguage: language,
		RewrittenText:  "a rewritten story",
		GenerationType: generationType,
		ModelVersions:  datatypes.JSON([]byte(`{}`)),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed suggestion: %v", err)
	}
	return s
}
