package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	types "github.com/yungbote/sonder-backend/internal/domain"
)

// In-memory repo fakes. They implement just enough of the repo contracts for
// the pipeline: candidate listing in insertion order and the at-most-once
// delivery insert.

type memStories struct {
	byID map[uuid.UUID]*types.Story
}

func (m *memStories) Create(_ context.Context, _ *gorm.DB, s *types.Story) error {
	m.byID[s.ID] = s
	return nil
}
func (m *memStories) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Story, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}
func (m *memStories) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.Story, error) {
	var out []*types.Story
	for _, id := range ids {
		if s, ok := m.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}
func (m *memStories) ListByStatus(_ context.Context, _ *gorm.DB, status string, _ int) ([]*types.Story, error) {
	var out []*types.Story
	for _, s := range m.byID {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}
func (m *memStories) UpdateStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status string) (*types.Story, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s.Status = status
	return s, nil
}

type memEmbeddings struct {
	rows []*types.StoryEmbedding
}

func (m *memEmbeddings) Upsert(_ context.Context, _ *gorm.DB, e *types.StoryEmbedding) error {
	for i, row := range m.rows {
		if row.StoryID == e.StoryID {
			m.rows[i] = e
			return nil
		}
	}
	m.rows = append(m.rows, e)
	return nil
}
func (m *memEmbeddings) GetByStoryID(_ context.Context, _ *gorm.DB, storyID uuid.UUID) (*types.StoryEmbedding, error) {
	for _, row := range m.rows {
		if row.StoryID == storyID {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *memEmbeddings) ListApprovedCandidates(_ context.Context, _ *gorm.DB, exclude uuid.UUID) ([]*types.StoryEmbedding, error) {
	var out []*types.StoryEmbedding
	for _, row := range m.rows {
		if row.StoryID != exclude {
			out = append(out, row)
		}
	}
	return out, nil
}

type memSuggested struct {
	rows []*types.SuggestedStory
}

func (m *memSuggested) Create(_ context.Context, _ *gorm.DB, s *types.SuggestedStory) error {
	m.rows = append(m.rows, s)
	return nil
}
func (m *memSuggested) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.SuggestedStory, error) {
	for _, row := range m.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *memSuggested) FindMatched(_ context.Context, _ *gorm.DB, sourceStoryID uuid.UUID, language string) (*types.SuggestedStory, error) {
	for _, row := range m.rows {
		if row.SourceStoryID == sourceStoryID && row.TargetLanguage == language && row.GenerationType == types.GenerationMatched {
			return row, nil
		}
	}
	return nil, nil
}
func (m *memSuggested) ListByLanguage(_ context.Context, _ *gorm.DB, language string, _, _ int) ([]*types.SuggestedStory, error) {
	var out []*types.SuggestedStory
	for _, row := range m.rows {
		if row.TargetLanguage == language {
			out = append(out, row)
		}
	}
	return out, nil
}

type memReceived struct {
	rows []*types.UserReceivedStory
}

func (m *memReceived) CreateOnce(_ context.Context, _ *gorm.DB, rec *types.UserReceivedStory) (*types.UserReceivedStory, bool, error) {
	for _, row := range m.rows {
		if row.UserID == rec.UserID && row.TriggeredByStoryID == rec.TriggeredByStoryID {
			return row, false, nil
		}
	}
	m.rows = append(m.rows, rec)
	return rec, true, nil
}
func (m *memReceived) GetForSubmission(_ context.Context, _ *gorm.DB, userID, triggeredByStoryID uuid.UUID) (*types.UserReceivedStory, error) {
	for _, row := range m.rows {
		if row.UserID == userID && row.TriggeredByStoryID == triggeredByStoryID {
			return row, nil
		}
	}
	return nil, nil
}
func (m *memReceived) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, _, _ int) ([]*types.UserReceivedStory, error) {
	var out []*types.UserReceivedStory
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}
func (m *memReceived) MarkRead(_ context.Context, _ *gorm.DB, id, userID uuid.UUID) error {
	for _, row := range m.rows {
		if row.ID == id && row.UserID == userID {
			row.IsRead = true
		}
	}
	return nil
}

type fakeRewriter struct {
	out   string
	err   error
	calls int
}

func (f *fakeRewriter) Rewrite(_ context.Context, _, _, _ string) (string, error) {
	f.calls++
	return f.out, f.err
}

type fakeFallback struct {
	out   string
	err   error
	calls int
}

func (f *fakeFallback) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.out, f.err
}

type pipelineFixture struct {
	stories   *memStories
	embeds    *memEmbeddings
	suggested *memSuggested
	received  *memReceived
	rewriter  *fakeRewriter
	fallback  *fakeFallback
	svc       DeliveryService
}

func newPipelineFixture() *pipelineFixture {
	f := &pipelineFixture{
		stories:   &memStories{byID: map[uuid.UUID]*types.Story{}},
		embeds:    &memEmbeddings{},
		suggested: &memSuggested{},
		received:  &memReceived{},
		rewriter:  &fakeRewriter{out: "a rewritten story"},
		fallback:  &fakeFallback{out: "a synthetic story"},
	}
	f.svc = NewDeliveryService(
		nopLogger(), f.embeds, f.stories, f.suggested, f.received,
		f.rewriter, f.fallback, DefaultMatchParams(), "fake-llm", "fake-embed",
	)
	return f
}

func (f *pipelineFixture) addApproved(vec []float32, archetype, tone string) *types.Story {
	s := &types.Story{ID: uuid.New(), UserID: uuid.New(), Language: "en",
		Text: fmt.Sprintf("story %d", len(f.stories.byID)), Status: types.StoryStatusApproved}
	f.stories.byID[s.ID] = s
	f.embeds.rows = append(f.embeds.rows, &types.StoryEmbedding{
		StoryID:     s.ID,
		Embedding:   types.EncodeVector(vec),
		Archetype:   archetype,
		EmotionTone: tone,
		EmbedModel:  "fake-embed",
	})
	return s
}

func submission() *types.Story {
	return &types.Story{ID: uuid.New(), UserID: uuid.New(), Language: "en",
		Text: "my own story", Status: types.StoryStatusApproved}
}

func TestDeliver_MatchedPath(t *testing.T) {
	f := newPipelineFixture()
	source := f.addApproved([]float32{1, 0}, "Hero", "hopeful")

	sub := submission()
	rec, sugg, err := f.svc.Deliver(context.Background(), nil, sub, []float32{1, 0.1}, types.Classification{Archetype: "Hero", EmotionTone: "hopeful"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, sugg)

	assert.Equal(t, types.GenerationMatched, sugg.GenerationType)
	assert.Equal(t, source.ID, sugg.SourceStoryID)
	require.NotNil(t, sugg.Similarity)
	assert.Greater(t, *sugg.Similarity, DefaultMatchParams().SimilarityThreshold)
	assert.Equal(t, sub.UserID, rec.UserID)
	assert.Equal(t, sub.ID, rec.TriggeredByStoryID)
	assert.Equal(t, 0, f.fallback.calls)
}

func TestDeliver_ReusesExistingRendition(t *testing.T) {
	f := newPipelineFixture()
	f.addApproved([]float32{1, 0}, "Hero", "hopeful")

	first, sugg1, err := f.svc.Deliver(context.Background(), nil, submission(), []float32{1, 0}, types.Classification{})
	require.NoError(t, err)

	second, sugg2, err := f.svc.Deliver(context.Background(), nil, submission(), []float32{1, 0}, types.Classification{})
	require.NoError(t, err)

	assert.Equal(t, sugg1.ID, sugg2.ID, "same (source, language) reuses the rendition")
	assert.NotEqual(t, first.ID, second.ID, "distinct recipients get distinct ledger rows")
	assert.Equal(t, 1, f.rewriter.calls)
}

func TestDeliver_FallbackWhenNoCandidates(t *testing.T) {
	f := newPipelineFixture()

	sub := submission()
	rec, sugg, err := f.svc.Deliver(context.Background(), nil, sub, []float32{1, 0}, types.Classification{})
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, sugg)

	assert.Equal(t, types.GenerationFallback, sugg.GenerationType)
	assert.Equal(t, sub.ID, sugg.SourceStoryID, "fallback is seeded by the submission itself")
	assert.Nil(t, sugg.Similarity)
}

func TestDeliver_FallbackWhenNoQueryVector(t *testing.T) {
	f := newPipelineFixture()
	f.addApproved([]float32{1, 0}, "Hero", "hopeful")

	_, sugg, err := f.svc.Deliver(context.Background(), nil, submission(), nil, types.Classification{})
	require.NoError(t, err)
	require.NotNil(t, sugg)
	assert.Equal(t, types.GenerationFallback, sugg.GenerationType)
}

func TestDeliver_RewriteFailureDegradesToFallback(t *testing.T) {
	f := newPipelineFixture()
	f.addApproved([]float32{1, 0}, "Hero", "hopeful")
	f.rewriter.err = errors.New("provider down")
	f.rewriter.out = ""

	_, sugg, err := f.svc.Deliver(context.Background(), nil, submission(), []float32{1, 0}, types.Classification{})
	require.NoError(t, err)
	require.NotNil(t, sugg)
	assert.Equal(t, types.GenerationFallback, sugg.GenerationType)
	assert.Equal(t, 1, f.fallback.calls)
}

func TestDeliver_FallbackFailureMeansNoDelivery(t *testing.T) {
	f := newPipelineFixture()
	f.fallback.err = errors.New("provider down")
	f.fallback.out = ""

	rec, sugg, err := f.svc.Deliver(context.Background(), nil, submission(), []float32{1, 0}, types.Classification{})
	require.NoError(t, err, "a failed delivery never fails the submission")
	assert.Nil(t, rec)
	assert.Nil(t, sugg)
	assert.Empty(t, f.received.rows)
}

func TestDeliver_AtMostOncePerSubmission(t *testing.T) {
	f := newPipelineFixture()
	f.addApproved([]float32{1, 0}, "Hero", "hopeful")

	sub := submission()
	first, _, err := f.svc.Deliver(context.Background(), nil, sub, []float32{1, 0}, types.Classification{})
	require.NoError(t, err)

	second, sugg, err := f.svc.Deliver(context.Background(), nil, sub, []float32{1, 0}, types.Classification{})
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID, "retry converges on the original ledger row")
	require.NotNil(t, sugg)
	assert.Len(t, f.received.rows, 1)
}

func TestDeliver_IgnoresForeignEmbedModels(t *testing.T) {
	f := newPipelineFixture()
	s := f.addApproved([]float32{1, 0}, "Hero", "hopeful")
	for _, row := range f.embeds.rows {
		if row.StoryID == s.ID {
			row.EmbedModel = "some-other-model"
		}
	}

	_, sugg, err := f.svc.Deliver(context.Background(), nil, submission(), []float32{1, 0}, types.Classification{})
	require.NoError(t, err)
	require.NotNil(t, sugg)
	assert.Equal(t, types.GenerationFallback, sugg.GenerationType, "incomparable vectors never match")
}
