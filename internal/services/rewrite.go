package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/sonder-backend/internal/clients/groq"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

const rewriteSystemPrompt = `You retell anonymous personal stories for a stranger to read.
Rewrite the story in the first person, preserving its emotional core and key events,
but change the phrasing completely so the original author cannot be identified from the words.
Never copy sentences from the original. Respond with the rewritten story only, no preamble.`

const translateSystemPrompt = `You are a literary translator.
Translate the story into %s, keeping the first-person voice and emotional register.
Respond with the translation only, no preamble.`

// verbatimRunLen is the length of a shared character run that counts as
// leaking the original author's words.
const verbatimRunLen = 60

// RewriteService produces the anonymized rendition of a matched story:
// rewrite first, then translate when the recipient's language differs from
// the source language. An unusable result is an error; the pipeline answers
// errors with fallback generation, never with the original text.
type RewriteService interface {
	Rewrite(ctx context.Context, original, sourceLanguage, targetLanguage string) (string, error)
}

type rewriteService struct {
	log *logger.Logger
	llm groq.Client
}

func NewRewriteService(log *logger.Logger, llm groq.Client) RewriteService {
	return &rewriteService{log: log.With("service", "RewriteService"), llm: llm}
}

func (s *rewriteService) Rewrite(ctx context.Context, original, sourceLanguage, targetLanguage string) (string, error) {
	rewritten, err := s.rewriteOnce(ctx, original)
	if err != nil {
		return "", err
	}
	if sharesVerbatimRun(original, rewritten, verbatimRunLen) {
		s.log.Warn("rewrite leaked verbatim text, retrying once")
		rewritten, err = s.rewriteOnce(ctx, original)
		if err != nil {
			return "", err
		}
		if sharesVerbatimRun(original, rewritten, verbatimRunLen) {
			return "", fmt.Errorf("rewrite: result still contains verbatim source text")
		}
	}

	// Translation fails soft: a rewritten-but-untranslated story is still
	// deliverable.
	if !strings.EqualFold(strings.TrimSpace(sourceLanguage), strings.TrimSpace(targetLanguage)) {
		translated, err := s.translate(ctx, rewritten, targetLanguage)
		if err != nil {
			s.log.Warn("translation failed, delivering untranslated rewrite", "error", err)
			return rewritten, nil
		}
		return translated, nil
	}
	return rewritten, nil
}

func (s *rewriteService) rewriteOnce(ctx context.Context, original string) (string, error) {
	out, err := s.llm.Complete(ctx, rewriteSystemPrompt, original, groq.Options{
		Temperature: 0.8,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("rewrite: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("rewrite: empty result")
	}
	return out, nil
}

func (s *rewriteService) translate(ctx context.Context, text, targetLanguage string) (string, error) {
	out, err := s.llm.Complete(ctx, fmt.Sprintf(translateSystemPrompt, targetLanguage), text, groq.Options{
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("translate: empty result")
	}
	return out, nil
}

// sharesVerbatimRun reports whether candidate contains any n-character run
// copied from original. Windows advance by n/2 so a copied run can't hide
// between sample points.
func sharesVerbatimRun(original, candidate string, n int) bool {
	if n <= 0 || len(original) < n {
		return false
	}
	step := n / 2
	if step == 0 {
		step = 1
	}
	for i := 0; i+n <= len(original); i += step {
		if strings.Contains(candidate, original[i:i+n]) {
			return true
		}
	}
	return false
}
