package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/sonder-backend/internal/data/repos"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/apierr"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

const (
	minStoryLen = 10
	maxStoryLen = 10000
)

// SubmitResult is everything a submission produced: the stored story, the
// moderation verdict, and (when the gate passed and the exchange succeeded)
// the delivered story.
type SubmitResult struct {
	Story          *types.Story             `json:"story,omitempty"`
	Moderation     types.ModerationResult   `json:"moderation"`
	Classification *types.Classification    `json:"classification,omitempty"`
	Suggested      *types.SuggestedStory    `json:"suggested_story,omitempty"`
	Received       *types.UserReceivedStory `json:"received,omitempty"`
}

type SubmitInput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Consent  bool   `json:"consent"`
}

// StoryService owns the submission flow and the moderator surface.
type StoryService interface {
	Submit(ctx context.Context, userID uuid.UUID, in SubmitInput) (*SubmitResult, error)
	ListForModeration(ctx context.Context, status string, limit int) ([]*types.Story, error)
	Decide(ctx context.Context, storyID uuid.UUID, action string) (*types.Story, error)
	// Process pre-generates renditions of an approved story for the given
	// target languages, re-deriving its enrichment when missing.
	Process(ctx context.Context, storyID uuid.UUID, targetLanguages []string) (*ProcessResult, error)
}

// ProcessResult is the reprocessing payload: the story, its stored
// classification, and one rendition per requested language.
type ProcessResult struct {
	Story          *types.Story            `json:"story"`
	Classification types.Classification    `json:"classification"`
	Suggestions    []*types.SuggestedStory `json:"suggestions"`
}

type storyService struct {
	log        *logger.Logger
	stories    repos.StoryRepo
	embeddings repos.StoryEmbeddingRepo
	suggested  repos.SuggestedStoryRepo
	moderation ModerationService
	classifier ClassifierService
	embedder   EmbeddingService
	rewriter   RewriteService
	delivery   DeliveryService
	languages  map[string]bool
}

func NewStoryService(
	log *logger.Logger,
	stories repos.StoryRepo,
	embeddings repos.StoryEmbeddingRepo,
	suggested repos.SuggestedStoryRepo,
	moderation ModerationService,
	classifier ClassifierService,
	embedder EmbeddingService,
	rewriter RewriteService,
	delivery DeliveryService,
	supportedLanguages []string,
) StoryService {
	langs := make(map[string]bool, len(supportedLanguages))
	for _, l := range supportedLanguages {
		langs[strings.ToLower(strings.TrimSpace(l))] = true
	}
	return &storyService{
		log:        log.With("service", "StoryService"),
		stories:    stories,
		embeddings: embeddings,
		suggested:  suggested,
		moderation: moderation,
		classifier: classifier,
		embedder:   embedder,
		rewriter:   rewriter,
		delivery:   delivery,
		languages:  langs,
	}
}

func (s *storyService) Submit(ctx context.Context, userID uuid.UUID, in SubmitInput) (*SubmitResult, error) {
	text := strings.TrimSpace(in.Text)
	language := strings.ToLower(strings.TrimSpace(in.Language))

	switch {
	case len(text) < minStoryLen:
		return nil, apierr.BadRequest("story_too_short", fmt.Errorf("story must be at least %d characters", minStoryLen))
	case len(text) > maxStoryLen:
		return nil, apierr.BadRequest("story_too_long", fmt.Errorf("story must be at most %d characters", maxStoryLen))
	case !in.Consent:
		return nil, apierr.BadRequest("consent_required", fmt.Errorf("sharing consent is required"))
	case !s.languages[language]:
		return nil, apierr.BadRequest("unsupported_language", fmt.Errorf("language %q is not supported", language))
	}

	// Fail closed: no verdict, no submission.
	verdict, err := s.moderation.Check(ctx, text)
	if err != nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "moderation_unavailable", err)
	}

	// A rejected submission leaves no trace: the verdict goes back to the
	// author, nothing is persisted.
	if !verdict.Approved {
		s.log.Info("submission rejected by moderation", "severity", verdict.Severity)
		return &SubmitResult{Moderation: verdict}, nil
	}

	story := &types.Story{
		ID:       uuid.New(),
		UserID:   userID,
		Language: language,
		Text:     text,
		Status:   types.StoryStatusApproved,
		Consent:  in.Consent,
	}
	if err := s.stories.Create(ctx, nil, story); err != nil {
		return nil, err
	}

	result := &SubmitResult{Story: story, Moderation: verdict}

	vec, class := s.enrich(ctx, nil, story)
	result.Classification = &class

	received, sugg, err := s.delivery.Deliver(ctx, nil, story, vec, class)
	if err != nil {
		s.log.Error("delivery failed", "error", err, "story_id", story.ID)
		return result, nil
	}
	result.Received = received
	result.Suggested = sugg
	return result, nil
}

// enrich computes the embedding and classification concurrently and stores
// them. Enrichment failures never fail the submission: a missing vector just
// means the story matches nothing until Process repairs it.
func (s *storyService) enrich(ctx context.Context, tx *gorm.DB, story *types.Story) ([]float32, types.Classification) {
	var (
		vec   []float32
		class types.Classification
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.embedder.EmbedOne(gctx, story.Text)
		if err != nil {
			s.log.Warn("embedding failed", "error", err, "story_id", story.ID)
			return nil
		}
		vec = v
		return nil
	})
	g.Go(func() error {
		class = s.classifier.Classify(gctx, story.Text)
		return nil
	})
	_ = g.Wait()

	if class.Archetype == "" {
		class = types.Classification{Archetype: DefaultArchetype, EmotionTone: DefaultEmotionTone}
	}

	emb := &types.StoryEmbedding{
		StoryID:     story.ID,
		Embedding:   types.EncodeVector(vec),
		Archetype:   class.Archetype,
		EmotionTone: class.EmotionTone,
		EmbedModel:  s.embedder.Model(),
	}
	if err := s.embeddings.Upsert(ctx, tx, emb); err != nil {
		s.log.Warn("embedding upsert failed", "error", err, "story_id", story.ID)
	}
	return vec, class
}

func (s *storyService) ListForModeration(ctx context.Context, status string, limit int) ([]*types.Story, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		status = types.StoryStatusPending
	}
	switch status {
	case types.StoryStatusPending, types.StoryStatusApproved, types.StoryStatusRejected:
	default:
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown status %q", status))
	}
	return s.stories.ListByStatus(ctx, nil, status, limit)
}

func (s *storyService) Decide(ctx context.Context, storyID uuid.UUID, action string) (*types.Story, error) {
	var status string
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "approve":
		status = types.StoryStatusApproved
	case "reject":
		status = types.StoryStatusRejected
	default:
		return nil, apierr.BadRequest("invalid_action", fmt.Errorf("action must be approve or reject"))
	}

	story, err := s.stories.UpdateStatus(ctx, nil, storyID, status)
	if err != nil {
		return nil, err
	}
	s.log.Info("moderation decision applied", "story_id", storyID, "status", status)

	// A newly approved story needs its enrichment to join the candidate pool.
	if status == types.StoryStatusApproved {
		if _, err := s.embeddings.GetByStoryID(ctx, nil, storyID); err != nil {
			s.enrich(ctx, nil, story)
		}
	}
	return story, nil
}

func (s *storyService) Process(ctx context.Context, storyID uuid.UUID, targetLanguages []string) (*ProcessResult, error) {
	story, err := s.stories.GetByID(ctx, nil, storyID)
	if err != nil {
		return nil, apierr.NotFound("story_not_found", err)
	}
	if story.Status != types.StoryStatusApproved {
		return nil, apierr.BadRequest("story_not_approved", fmt.Errorf("only approved stories are processed"))
	}
	if len(targetLanguages) == 0 {
		return nil, apierr.BadRequest("languages_required", fmt.Errorf("at least one target language is required"))
	}

	var class types.Classification
	emb, err := s.embeddings.GetByStoryID(ctx, nil, storyID)
	if err != nil {
		_, class = s.enrich(ctx, nil, story)
	} else {
		class = types.Classification{Archetype: emb.Archetype, EmotionTone: emb.EmotionTone}
	}

	out := make([]*types.SuggestedStory, 0, len(targetLanguages))
	seen := make(map[string]bool, len(targetLanguages))
	for _, raw := range targetLanguages {
		lang := strings.ToLower(strings.TrimSpace(raw))
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		if !s.languages[lang] {
			return nil, apierr.BadRequest("unsupported_language", fmt.Errorf("language %q is not supported", lang))
		}

		existing, err := s.suggested.FindMatched(ctx, nil, story.ID, lang)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			out = append(out, existing)
			continue
		}

		text, err := s.rewriter.Rewrite(ctx, story.Text, story.Language, lang)
		if err != nil {
			return nil, apierr.New(http.StatusServiceUnavailable, "rewrite_unavailable", err)
		}
		sugg := &types.SuggestedStory{
			ID:             uuid.New(),
			SourceStoryID:  story.ID,
			TargetLanguage: lang,
			RewrittenText:  text,
			GenerationType: types.GenerationMatched,
		}
		if err := s.suggested.Create(ctx, nil, sugg); err != nil {
			return nil, err
		}
		out = append(out, sugg)
	}
	return &ProcessResult{Story: story, Classification: class, Suggestions: out}, nil
}
