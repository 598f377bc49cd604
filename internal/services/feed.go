package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/sonder-backend/internal/clients/redis"
	"github.com/yungbote/sonder-backend/internal/data/repos"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/apierr"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

// FeedItem is a suggestion plus its social aggregates. MyReaction is
// per-viewer and never cached.
type FeedItem struct {
	Suggested     *types.SuggestedStory `json:"suggested_story"`
	ReactionCount int64                 `json:"reaction_count"`
	CommentCount  int64                 `json:"comment_count"`
	MyReaction    string                `json:"my_reaction,omitempty"`
}

// FeedService pages delivered stories by language. The page skeleton
// (suggestions + counts) sits behind a short redis TTL when a cache is wired;
// counts may lag by at most that TTL.
type FeedService interface {
	List(ctx context.Context, viewer uuid.UUID, language string, limit, offset int) ([]*FeedItem, error)
}

type feedService struct {
	log       *logger.Logger
	suggested repos.SuggestedStoryRepo
	reactions repos.ReactionRepo
	comments  repos.CommentRepo
	cache     redis.Cache
	cacheTTL  time.Duration
}

func NewFeedService(
	log *logger.Logger,
	suggested repos.SuggestedStoryRepo,
	reactions repos.ReactionRepo,
	comments repos.CommentRepo,
	cache redis.Cache,
	cacheTTL time.Duration,
) FeedService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &feedService{
		log:       log.With("service", "FeedService"),
		suggested: suggested,
		reactions: reactions,
		comments:  comments,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
}

type feedPage struct {
	Items []*FeedItem `json:"items"`
}

func (s *feedService) List(ctx context.Context, viewer uuid.UUID, language string, limit, offset int) ([]*FeedItem, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return nil, apierr.BadRequest("language_required", fmt.Errorf("lang query parameter is required"))
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.page(ctx, language, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Suggested.ID)
	}
	mine, err := s.reactions.UserReactions(ctx, nil, viewer, ids)
	if err != nil {
		s.log.Warn("viewer reactions lookup failed", "error", err)
		mine = map[uuid.UUID]string{}
	}
	for _, it := range items {
		it.MyReaction = mine[it.Suggested.ID]
	}
	return items, nil
}

func (s *feedService) page(ctx context.Context, language string, limit, offset int) ([]*FeedItem, error) {
	key := fmt.Sprintf("feed:%s:%d:%d", language, limit, offset)
	if s.cache != nil {
		var cached feedPage
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
			s.log.Warn("feed cache read failed", "error", err)
		} else if hit {
			return cached.Items, nil
		}
	}

	rows, err := s.suggested.ListByLanguage(ctx, nil, language, limit, offset)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	reactionCounts, err := s.reactions.CountBySuggestedIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.comments.CountBySuggestedIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}

	items := make([]*FeedItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, &FeedItem{
			Suggested:     row,
			ReactionCount: reactionCounts[row.ID],
			CommentCount:  commentCounts[row.ID],
		})
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, feedPage{Items: items}, s.cacheTTL); err != nil {
			s.log.Warn("feed cache write failed", "error", err)
		}
	}
	return items, nil
}
