package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yungbote/sonder-backend/internal/clients/groq"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

func nopLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// fakeLLM replays scripted completions in order. A nil error with reply i
// returns replies[i]; past the end it errors.
type fakeLLM struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (f *fakeLLM) Complete(_ context.Context, system, user string, _ groq.Options) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, system+"\n"+user)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", fmt.Errorf("fake llm: no scripted reply for call %d", i)
}

func (f *fakeLLM) Model() string { return "fake-llm" }
