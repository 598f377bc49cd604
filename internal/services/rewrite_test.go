package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var longOriginal = strings.Repeat("the winter my father taught me to fish on the frozen lake ", 5)

func TestRewrite_SameLanguageSingleCall(t *testing.T) {
	llm := &fakeLLM{replies: []string{"A completely fresh retelling."}}
	svc := NewRewriteService(nopLogger(), llm)

	out, err := svc.Rewrite(context.Background(), longOriginal, "en", "en")
	require.NoError(t, err)
	assert.Equal(t, "A completely fresh retelling.", out)
	assert.Equal(t, 1, llm.calls, "no translation when languages match")
}

func TestRewrite_TranslatesWhenLanguagesDiffer(t *testing.T) {
	llm := &fakeLLM{replies: []string{"A fresh retelling.", "Una nueva versión."}}
	svc := NewRewriteService(nopLogger(), llm)

	out, err := svc.Rewrite(context.Background(), longOriginal, "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "Una nueva versión.", out)
	assert.Equal(t, 2, llm.calls)
}

func TestRewrite_VerbatimLeakRetriesOnce(t *testing.T) {
	leaky := "He said: " + longOriginal[:80]
	llm := &fakeLLM{replies: []string{leaky, "A clean second attempt."}}
	svc := NewRewriteService(nopLogger(), llm)

	out, err := svc.Rewrite(context.Background(), longOriginal, "en", "en")
	require.NoError(t, err)
	assert.Equal(t, "A clean second attempt.", out)
	assert.Equal(t, 2, llm.calls)
}

func TestRewrite_PersistentLeakIsAnError(t *testing.T) {
	leaky := "He said: " + longOriginal[:80]
	llm := &fakeLLM{replies: []string{leaky, leaky}}
	svc := NewRewriteService(nopLogger(), llm)

	_, err := svc.Rewrite(context.Background(), longOriginal, "en", "en")
	require.Error(t, err, "original words must never reach a recipient")
}

func TestRewrite_TranslationFailureFailsSoft(t *testing.T) {
	llm := &fakeLLM{
		replies: []string{"A fresh retelling.", ""},
		errs:    []error{nil, errors.New("timeout")},
	}
	svc := NewRewriteService(nopLogger(), llm)

	out, err := svc.Rewrite(context.Background(), longOriginal, "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "A fresh retelling.", out, "untranslated rewrite is still deliverable")
}

func TestRewrite_ProviderFailureIsAnError(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("connection refused")}}
	svc := NewRewriteService(nopLogger(), llm)

	_, err := svc.Rewrite(context.Background(), longOriginal, "en", "en")
	require.Error(t, err)
}

func TestSharesVerbatimRun(t *testing.T) {
	assert.False(t, sharesVerbatimRun("short", "short", 60), "too short to leak")
	assert.True(t, sharesVerbatimRun(longOriginal, "x "+longOriginal[10:90]+" y", 60))
	assert.False(t, sharesVerbatimRun(longOriginal, "entirely different words", 60))
}
