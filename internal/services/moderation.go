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

const moderationSystemPrompt = `You are a strict content moderator for an anonymous story-sharing app.
Evaluate the user's story for: self-harm instructions, threats, harassment,
sexual content involving minors, doxxing, spam, and gibberish.
Personal stories about difficult experiences (grief, illness, conflict) are allowed.
Respond with ONLY a JSON object: {"approved": boolean, "reason": string, "severity": "low"|"medium"|"high"}.
"reason" must be empty when approved.`

// ModerationService is the safety gate in front of every submission. It never
// guesses: a provider failure or an unparseable verdict is returned as an
// error, and callers treat any error as "not approved".
type ModerationService interface {
	Check(ctx context.Context, text string) (types.ModerationResult, error)
}

type moderationService struct {
	log *logger.Logger
	llm groq.Client
}

func NewModerationService(log *logger.Logger, llm groq.Client) ModerationService {
	return &moderationService{log: log.With("service", "ModerationService"), llm: llm}
}

func (s *moderationService) Check(ctx context.Context, text string) (types.ModerationResult, error) {
	out, err := s.llm.Complete(ctx, moderationSystemPrompt, text, groq.Options{
		Temperature: 0.1,
		MaxTokens:   200,
		JSONMode:    true,
	})
	if err != nil {
		s.log.Warn("moderation call failed", "error", err)
		return types.ModerationResult{}, fmt.Errorf("moderation: %w", err)
	}

	var verdict types.ModerationResult
	if err := json.Unmarshal([]byte(extractJSONObject(out)), &verdict); err != nil {
		s.log.Warn("moderation verdict unparseable", "error", err)
		return types.ModerationResult{}, fmt.Errorf("moderation: bad verdict: %w", err)
	}

	verdict.Severity = strings.ToLower(strings.TrimSpace(verdict.Severity))
	switch verdict.Severity {
	case "low", "medium", "high":
	default:
		if !verdict.Approved {
			verdict.Severity = "medium"
		} else {
			verdict.Severity = ""
		}
	}
	if verdict.Approved {
		verdict.Reason = ""
	}
	return verdict, nil
}

// FailClosedVerdict is the verdict surfaces hand out when the gate itself is
// down: never approved, retryable reason.
func FailClosedVerdict() types.ModerationResult {
	return types.ModerationResult{
		Approved: false,
		Reason:   "moderation is temporarily unavailable, please try again",
		Severity: "medium",
	}
}

// extractJSONObject trims any prose the model wrapped around its JSON object.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
