package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/sonder-backend/internal/data/repos"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

// DeliveryService runs the exchange after an approved submission: rank the
// approved corpus against the new story, reuse or produce a rendition of the
// best match, and record the delivery. Exactly one delivery can exist per
// (user, submission); the ledger's unique index enforces that even under
// concurrent retries.
//
// Delivery is best-effort by contract: when even fallback generation fails
// the submission still succeeds, with no received story.
type DeliveryService interface {
	Deliver(ctx context.Context, tx *gorm.DB, submitted *types.Story, queryVec []float32, class types.Classification) (*types.UserReceivedStory, *types.SuggestedStory, error)
}

type deliveryService struct {
	log        *logger.Logger
	embeddings repos.StoryEmbeddingRepo
	stories    repos.StoryRepo
	suggested  repos.SuggestedStoryRepo
	received   repos.ReceivedStoryRepo
	rewriter   RewriteService
	fallback   FallbackService
	params     MatchParams
	llmModel   string
	embedModel string
}

func NewDeliveryService(
	log *logger.Logger,
	embeddings repos.StoryEmbeddingRepo,
	stories repos.StoryRepo,
	suggested repos.SuggestedStoryRepo,
	received repos.ReceivedStoryRepo,
	rewriter RewriteService,
	fallback FallbackService,
	params MatchParams,
	llmModel string,
	embedModel string,
) DeliveryService {
	return &deliveryService{
		log:        log.With("service", "DeliveryService"),
		embeddings: embeddings,
		stories:    stories,
		suggested:  suggested,
		received:   received,
		rewriter:   rewriter,
		fallback:   fallback,
		params:     params,
		llmModel:   llmModel,
		embedModel: embedModel,
	}
}

func (s *deliveryService) Deliver(ctx context.Context, tx *gorm.DB, submitted *types.Story, queryVec []float32, class types.Classification) (*types.UserReceivedStory, *types.SuggestedStory, error) {
	sugg := s.pickOrGenerate(ctx, tx, submitted, queryVec, class)
	if sugg == nil {
		return nil, nil, nil
	}

	rec := &types.UserReceivedStory{
		ID:                 uuid.New(),
		UserID:             submitted.UserID,
		SourceStoryID:      sugg.SourceStoryID,
		SuggestedStoryID:   sugg.ID,
		TriggeredByStoryID: submitted.ID,
	}
	survivor, created, err := s.received.CreateOnce(ctx, tx, rec)
	if err != nil {
		return nil, nil, err
	}
	if !created {
		s.log.Info("delivery already recorded for submission",
			"user_id", submitted.UserID, "story_id", submitted.ID)
		existing, err := s.suggested.GetByID(ctx, tx, survivor.SuggestedStoryID)
		if err != nil {
			return survivor, nil, nil
		}
		return survivor, existing, nil
	}
	return survivor, sugg, nil
}

// pickOrGenerate resolves the SuggestedStory to deliver, or nil when nothing
// could be produced. Rewrite failures degrade to fallback generation; a
// fallback failure degrades to no delivery.
func (s *deliveryService) pickOrGenerate(ctx context.Context, tx *gorm.DB, submitted *types.Story, queryVec []float32, class types.Classification) *types.SuggestedStory {
	best, matched := s.bestCandidate(ctx, tx, submitted, queryVec, class)

	if matched {
		existing, err := s.suggested.FindMatched(ctx, tx, best.StoryID, submitted.Language)
		if err != nil {
			s.log.Error("lookup of existing rendition failed", "error", err, "story_id", best.StoryID)
		} else if existing != nil {
			return existing
		}

		if sugg := s.renderMatch(ctx, tx, submitted, best); sugg != nil {
			return sugg
		}
		// fall through to synthetic generation
	}

	return s.renderFallback(ctx, tx, submitted)
}

func (s *deliveryService) bestCandidate(ctx context.Context, tx *gorm.DB, submitted *types.Story, queryVec []float32, class types.Classification) (RankedCandidate, bool) {
	if len(queryVec) == 0 {
		return RankedCandidate{}, false
	}
	rows, err := s.embeddings.ListApprovedCandidates(ctx, tx, submitted.ID)
	if err != nil {
		s.log.Error("candidate listing failed", "error", err)
		return RankedCandidate{}, false
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		// Vectors from a different embedding model are not comparable.
		if row.EmbedModel != s.embedModel {
			continue
		}
		vec := row.Vector()
		if len(vec) == 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			StoryID:     row.StoryID,
			Vector:      vec,
			Archetype:   row.Archetype,
			EmotionTone: row.EmotionTone,
		})
	}
	return BestMatch(queryVec, class.Archetype, class.EmotionTone, candidates, s.params)
}

func (s *deliveryService) renderMatch(ctx context.Context, tx *gorm.DB, submitted *types.Story, best RankedCandidate) *types.SuggestedStory {
	source, err := s.stories.GetByID(ctx, tx, best.StoryID)
	if err != nil {
		s.log.Error("matched source story missing", "error", err, "story_id", best.StoryID)
		return nil
	}

	text, err := s.rewriter.Rewrite(ctx, source.Text, source.Language, submitted.Language)
	if err != nil {
		s.log.Warn("rewrite failed, degrading to fallback", "error", err, "story_id", source.ID)
		return nil
	}

	similarity := best.Score
	sugg := &types.SuggestedStory{
		ID:             uuid.New(),
		SourceStoryID:  source.ID,
		TargetLanguage: submitted.Language,
		RewrittenText:  text,
		GenerationType: types.GenerationMatched,
		Similarity:     &similarity,
		ModelVersions:  s.modelVersions(),
	}
	if err := s.suggested.Create(ctx, tx, sugg); err != nil {
		s.log.Error("suggested story insert failed", "error", err)
		return nil
	}
	return sugg
}

func (s *deliveryService) renderFallback(ctx context.Context, tx *gorm.DB, submitted *types.Story) *types.SuggestedStory {
	text, err := s.fallback.Generate(ctx, submitted.Text, submitted.Language)
	if err != nil {
		s.log.Warn("fallback generation failed, no delivery", "error", err, "story_id", submitted.ID)
		return nil
	}

	sugg := &types.SuggestedStory{
		ID:             uuid.New(),
		SourceStoryID:  submitted.ID,
		TargetLanguage: submitted.Language,
		RewrittenText:  text,
		GenerationType: types.GenerationFallback,
		ModelVersions:  s.modelVersions(),
	}
	if err := s.suggested.Create(ctx, tx, sugg); err != nil {
		s.log.Error("fallback story insert failed", "error", err)
		return nil
	}
	return sugg
}

func (s *deliveryService) modelVersions() datatypes.JSON {
	raw, err := json.Marshal(map[string]string{
		"llm":       s.llmModel,
		"embedding": s.embedModel,
	})
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}
