package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeration_Approved(t *testing.T) {
	llm := &fakeLLM{replies: []string{`{"approved": true, "reason": "", "severity": ""}`}}
	svc := NewModerationService(nopLogger(), llm)

	verdict, err := svc.Check(context.Background(), "a quiet story about my grandmother")
	require.NoError(t, err)
	assert.True(t, verdict.Approved)
	assert.Empty(t, verdict.Reason)
	assert.Empty(t, verdict.Severity)
}

func TestModeration_RejectedNormalizesSeverity(t *testing.T) {
	llm := &fakeLLM{replies: []string{`{"approved": false, "reason": "harassment", "severity": "EXTREME"}`}}
	svc := NewModerationService(nopLogger(), llm)

	verdict, err := svc.Check(context.Background(), "some text")
	require.NoError(t, err)
	assert.False(t, verdict.Approved)
	assert.Equal(t, "harassment", verdict.Reason)
	assert.Equal(t, "medium", verdict.Severity, "unknown severity coerces to medium on rejection")
}

func TestModeration_ProviderErrorIsAnError(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("connection refused")}}
	svc := NewModerationService(nopLogger(), llm)

	_, err := svc.Check(context.Background(), "some text")
	require.Error(t, err, "the gate never guesses")
}

func TestModeration_UnparseableVerdictIsAnError(t *testing.T) {
	llm := &fakeLLM{replies: []string{"I think this is probably fine!"}}
	svc := NewModerationService(nopLogger(), llm)

	_, err := svc.Check(context.Background(), "some text")
	require.Error(t, err)
}

func TestModeration_ExtractsWrappedJSON(t *testing.T) {
	llm := &fakeLLM{replies: []string{"Here is my verdict:\n{\"approved\": true}\nThanks!"}}
	svc := NewModerationService(nopLogger(), llm)

	verdict, err := svc.Check(context.Background(), "some text")
	require.NoError(t, err)
	assert.True(t, verdict.Approved)
}

func TestFailClosedVerdict(t *testing.T) {
	v := FailClosedVerdict()
	assert.False(t, v.Approved)
	assert.NotEmpty(t, v.Reason)
	assert.Equal(t, "medium", v.Severity)
}
