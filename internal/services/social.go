package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/sonder-backend/internal/data/repos"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/apierr"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

var reactionTypes = map[string]bool{
	"heart":    true,
	"hug":      true,
	"strength": true,
	"insight":  true,
}

const maxCommentLen = 2000

const (
	ReactionAdded   = "added"
	ReactionRemoved = "removed"
)

// SocialService covers reactions, comments, reports, follows and profiles —
// everything hanging off a delivered story or a user.
type SocialService interface {
	ToggleReaction(ctx context.Context, userID, suggestedID uuid.UUID, reactionType string) (string, error)
	ListComments(ctx context.Context, suggestedID uuid.UUID) ([]*types.Comment, error)
	CreateComment(ctx context.Context, userID, suggestedID uuid.UUID, text string) (*types.Comment, types.ModerationResult, error)
	ModerateText(ctx context.Context, text string) types.ModerationResult
	Report(ctx context.Context, userID, suggestedID uuid.UUID, reason string) (*types.Report, error)
	SetFollow(ctx context.Context, follower, followed uuid.UUID, action string) error
	GetProfile(ctx context.Context, viewer, userID uuid.UUID) (*ProfileView, error)
}

// ProfileView is the public profile card: the row plus follow aggregates.
type ProfileView struct {
	Profile     *types.Profile `json:"profile"`
	Followers   int64          `json:"followers"`
	Following   int64          `json:"following"`
	IsFollowing bool           `json:"is_following"`
}

type socialService struct {
	log        *logger.Logger
	suggested  repos.SuggestedStoryRepo
	reactions  repos.ReactionRepo
	comments   repos.CommentRepo
	reports    repos.ReportRepo
	follows    repos.FollowRepo
	profiles   repos.ProfileRepo
	moderation ModerationService
}

func NewSocialService(
	log *logger.Logger,
	suggested repos.SuggestedStoryRepo,
	reactions repos.ReactionRepo,
	comments repos.CommentRepo,
	reports repos.ReportRepo,
	follows repos.FollowRepo,
	profiles repos.ProfileRepo,
	moderation ModerationService,
) SocialService {
	return &socialService{
		log:        log.With("service", "SocialService"),
		suggested:  suggested,
		reactions:  reactions,
		comments:   comments,
		reports:    reports,
		follows:    follows,
		profiles:   profiles,
		moderation: moderation,
	}
}

// ToggleReaction adds the reaction when absent and removes it when present,
// returning which of the two happened.
func (s *socialService) ToggleReaction(ctx context.Context, userID, suggestedID uuid.UUID, reactionType string) (string, error) {
	if !reactionTypes[reactionType] {
		return "", apierr.BadRequest("invalid_reaction", fmt.Errorf("unknown reaction type %q", reactionType))
	}
	if _, err := s.suggested.GetByID(ctx, nil, suggestedID); err != nil {
		return "", apierr.NotFound("suggested_not_found", err)
	}

	existing, err := s.reactions.Find(ctx, nil, suggestedID, userID, reactionType)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := s.reactions.DeleteByID(ctx, nil, existing.ID); err != nil {
			return "", err
		}
		return ReactionRemoved, nil
	}

	err = s.reactions.Create(ctx, nil, &types.Reaction{
		ID:          uuid.New(),
		SuggestedID: suggestedID,
		UserID:      userID,
		Type:        reactionType,
	})
	if err != nil {
		return "", err
	}
	return ReactionAdded, nil
}

func (s *socialService) ListComments(ctx context.Context, suggestedID uuid.UUID) ([]*types.Comment, error) {
	return s.comments.ListBySuggested(ctx, nil, suggestedID)
}

// CreateComment runs the text through the moderation gate first. The verdict
// is returned alongside so callers can surface the rejection reason; a gate
// outage fails closed.
func (s *socialService) CreateComment(ctx context.Context, userID, suggestedID uuid.UUID, text string) (*types.Comment, types.ModerationResult, error) {
	if text == "" || len(text) > maxCommentLen {
		return nil, types.ModerationResult{}, apierr.BadRequest("invalid_comment", fmt.Errorf("comment must be 1-%d characters", maxCommentLen))
	}
	if _, err := s.suggested.GetByID(ctx, nil, suggestedID); err != nil {
		return nil, types.ModerationResult{}, apierr.NotFound("suggested_not_found", err)
	}

	verdict := s.ModerateText(ctx, text)
	if !verdict.Approved {
		return nil, verdict, nil
	}

	c := &types.Comment{
		ID:          uuid.New(),
		SuggestedID: suggestedID,
		UserID:      userID,
		Text:        text,
	}
	if err := s.comments.Create(ctx, nil, c); err != nil {
		return nil, verdict, err
	}
	return c, verdict, nil
}

// ModerateText always produces a verdict: gate failures collapse to the
// fail-closed one.
func (s *socialService) ModerateText(ctx context.Context, text string) types.ModerationResult {
	verdict, err := s.moderation.Check(ctx, text)
	if err != nil {
		s.log.Warn("comment moderation unavailable, failing closed", "error", err)
		return FailClosedVerdict()
	}
	return verdict
}

func (s *socialService) Report(ctx context.Context, userID, suggestedID uuid.UUID, reason string) (*types.Report, error) {
	if reason == "" {
		return nil, apierr.BadRequest("reason_required", fmt.Errorf("a report reason is required"))
	}
	if _, err := s.suggested.GetByID(ctx, nil, suggestedID); err != nil {
		return nil, apierr.NotFound("suggested_not_found", err)
	}

	rep := &types.Report{
		ID:          uuid.New(),
		SuggestedID: suggestedID,
		UserID:      userID,
		Reason:      reason,
	}
	if err := s.reports.Create(ctx, nil, rep); err != nil {
		return nil, err
	}
	s.log.Info("content reported", "suggested_id", suggestedID)
	return rep, nil
}

func (s *socialService) SetFollow(ctx context.Context, follower, followed uuid.UUID, action string) error {
	if follower == followed {
		return apierr.BadRequest("self_follow", fmt.Errorf("cannot follow yourself"))
	}
	switch action {
	case "follow":
		if _, err := s.profiles.Ensure(ctx, nil, followed); err != nil {
			return err
		}
		return s.follows.Create(ctx, nil, &types.Follow{
			ID:       uuid.New(),
			Follower: follower,
			Followed: followed,
		})
	case "unfollow":
		return s.follows.Delete(ctx, nil, follower, followed)
	default:
		return apierr.BadRequest("invalid_action", fmt.Errorf("action must be follow or unfollow"))
	}
}

func (s *socialService) GetProfile(ctx context.Context, viewer, userID uuid.UUID) (*ProfileView, error) {
	profile, err := s.profiles.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apierr.NotFound("profile_not_found", fmt.Errorf("no profile for user"))
	}

	followers, err := s.follows.CountFollowers(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountFollowing(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{Profile: profile, Followers: followers, Following: following}
	if viewer != uuid.Nil && viewer != userID {
		isFollowing, err := s.follows.Exists(ctx, nil, viewer, userID)
		if err != nil {
			return nil, err
		}
		view.IsFollowing = isFollowing
	}
	return view, nil
}
