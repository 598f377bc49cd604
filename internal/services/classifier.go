package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/sonder-backend/internal/clients/groq"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

const (
	DefaultArchetype   = "Self"
	DefaultEmotionTone = "reflective"
)

var classifierSystemPrompt = fmt.Sprintf(`You classify anonymous personal stories.
Pick the single best Jungian archetype from: %s.
Pick the single best emotional tone from: %s.
Respond with ONLY a JSON object: {"archetype": string, "emotion_tone": string}.`,
	strings.Join(types.Archetypes, ", "),
	strings.Join(types.EmotionTones, ", "))

// ClassifierService labels a story with a (archetype, emotion tone) pair used
// for match boosting. It degrades instead of failing: any provider or parse
// problem, and any label outside the fixed vocabulary, falls back to the
// neutral defaults so a submission is never blocked by classification.
type ClassifierService interface {
	Classify(ctx context.Context, text string) types.Classification
}

type classifierService struct {
	log *logger.Logger
	llm groq.Client
}

func NewClassifierService(log *logger.Logger, llm groq.Client) ClassifierService {
	return &classifierService{log: log.With("service", "ClassifierService"), llm: llm}
}

func (s *classifierService) Classify(ctx context.Context, text string) types.Classification {
	fallback := types.Classification{Archetype: DefaultArchetype, EmotionTone: DefaultEmotionTone}

	out, err := s.llm.Complete(ctx, classifierSystemPrompt, text, groq.Options{
		Temperature: 0.3,
		MaxTokens:   100,
		JSONMode:    true,
	})
	if err != nil {
		s.log.Warn("classification call failed, using defaults", "error", err)
		return fallback
	}

	var c types.Classification
	if err := json.Unmarshal([]byte(extractJSONObject(out)), &c); err != nil {
		s.log.Warn("classification unparseable, using defaults", "error", err)
		return fallback
	}

	c.Archetype = strings.TrimSpace(c.Archetype)
	c.EmotionTone = strings.ToLower(strings.TrimSpace(c.EmotionTone))
	if !types.ValidArchetype(c.Archetype) {
		c.Archetype = DefaultArchetype
	}
	if !types.ValidEmotionTone(c.EmotionTone) {
		c.EmotionTone = DefaultEmotionTone
	}
	return c
}
