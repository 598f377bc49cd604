package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/sonder-backend/internal/clients/groq"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

const fallbackSystemPrompt = `You write short anonymous first-person stories for a story exchange.
Given a thematic seed, write a brand-new story (150-300 words) in %s that resonates
with the seed's themes and emotions without retelling it.
Respond with the story only, no preamble.`

// fallbackSeedLen caps how much of the submission leaks into the generation
// prompt.
const fallbackSeedLen = 200

// FallbackService generates a synthetic story when no prior submission is
// similar enough to deliver. The seed is a truncated slice of the new
// submission, used only to steer theme and tone.
type FallbackService interface {
	Generate(ctx context.Context, seedText, language string) (string, error)
}

type fallbackService struct {
	log *logger.Logger
	llm groq.Client
}

func NewFallbackService(log *logger.Logger, llm groq.Client) FallbackService {
	return &fallbackService{log: log.With("service", "FallbackService"), llm: llm}
}

func (s *fallbackService) Generate(ctx context.Context, seedText, language string) (string, error) {
	seed := strings.TrimSpace(seedText)
	if len(seed) > fallbackSeedLen {
		seed = seed[:fallbackSeedLen]
	}

	out, err := s.llm.Complete(ctx, fmt.Sprintf(fallbackSystemPrompt, language), seed, groq.Options{
		Temperature: 0.9,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("fallback generation: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("fallback generation: empty result")
	}
	return out, nil
}
