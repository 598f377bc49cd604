package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/apierr"
	"github.com/yungbote/sonder-backend/internal/platform/ctxutil"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"github.com/yungbote/sonder-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// asUser stands in for the auth middleware.
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type fakeStoryService struct {
	submit  func(ctx context.Context, userID uuid.UUID, in services.SubmitInput) (*services.SubmitResult, error)
	process func(ctx context.Context, storyID uuid.UUID, targetLanguages []string) (*services.ProcessResult, error)
}

func (f *fakeStoryService) Submit(ctx context.Context, userID uuid.UUID, in services.SubmitInput) (*services.SubmitResult, error) {
	return f.submit(ctx, userID, in)
}
func (f *fakeStoryService) ListForModeration(context.Context, string, int) ([]*types.Story, error) {
	return nil, nil
}
func (f *fakeStoryService) Decide(context.Context, uuid.UUID, string) (*types.Story, error) {
	return nil, nil
}
func (f *fakeStoryService) Process(ctx context.Context, storyID uuid.UUID, targetLanguages []string) (*services.ProcessResult, error) {
	return f.process(ctx, storyID, targetLanguages)
}

type fakeFeedService struct {
	list func(ctx context.Context, viewer uuid.UUID, language string, limit, offset int) ([]*services.FeedItem, error)
}

func (f *fakeFeedService) List(ctx context.Context, viewer uuid.UUID, language string, limit, offset int) ([]*services.FeedItem, error) {
	return f.list(ctx, viewer, language, limit, offset)
}

type fakeSocialService struct {
	toggle   func(ctx context.Context, userID, suggestedID uuid.UUID, reactionType string) (string, error)
	follow   func(ctx context.Context, follower, followed uuid.UUID, action string) error
	moderate func(ctx context.Context, text string) types.ModerationResult
}

func (f *fakeSocialService) ToggleReaction(ctx context.Context, userID, suggestedID uuid.UUID, reactionType string) (string, error) {
	return f.toggle(ctx, userID, suggestedID, reactionType)
}
func (f *fakeSocialService) ListComments(context.Context, uuid.UUID) ([]*types.Comment, error) {
	return nil, nil
}
func (f *fakeSocialService) CreateComment(context.Context, uuid.UUID, uuid.UUID, string) (*types.Comment, types.ModerationResult, error) {
	return nil, types.ModerationResult{}, nil
}
func (f *fakeSocialService) ModerateText(ctx context.Context, text string) types.ModerationResult {
	return f.moderate(ctx, text)
}
func (f *fakeSocialService) Report(context.Context, uuid.UUID, uuid.UUID, string) (*types.Report, error) {
	return nil, nil
}
func (f *fakeSocialService) SetFollow(ctx context.Context, follower, followed uuid.UUID, action string) error {
	return f.follow(ctx, follower, followed, action)
}
func (f *fakeSocialService) GetProfile(context.Context, uuid.UUID, uuid.UUID) (*services.ProfileView, error) {
	return nil, nil
}

func TestSubmit_Approved(t *testing.T) {
	user := uuid.New()
	recID := uuid.New()
	svc := &fakeStoryService{
		submit: func(_ context.Context, userID uuid.UUID, in services.SubmitInput) (*services.SubmitResult, error) {
			assert.Equal(t, user, userID)
			assert.True(t, in.Consent)
			return &services.SubmitResult{
				Story:          &types.Story{ID: uuid.New(), Status: types.StoryStatusApproved},
				Moderation:     types.ModerationResult{Approved: true},
				Classification: &types.Classification{Archetype: "Hero", EmotionTone: "hopeful"},
				Received:       &types.UserReceivedStory{ID: recID},
				Suggested:      &types.SuggestedStory{ID: uuid.New(), GenerationType: types.GenerationMatched},
			}, nil
		},
	}

	r := gin.New()
	r.POST("/api/submit", asUser(user), NewStoryHandler(testLogger(), svc).Submit)

	w := doJSON(t, r, http.MethodPost, "/api/submit", gin.H{"text": "a long enough story", "language": "en", "consent": true})
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			ReceivedStoryID *uuid.UUID `json:"receivedStoryId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.NotNil(t, env.Data.ReceivedStoryID)
	assert.Equal(t, recID, *env.Data.ReceivedStoryID)
}

func TestSubmit_RejectedIs400WithReason(t *testing.T) {
	svc := &fakeStoryService{
		submit: func(context.Context, uuid.UUID, services.SubmitInput) (*services.SubmitResult, error) {
			return &services.SubmitResult{
				Moderation: types.ModerationResult{Approved: false, Reason: "harassment", Severity: "high"},
			}, nil
		},
	}

	r := gin.New()
	r.POST("/api/submit", asUser(uuid.New()), NewStoryHandler(testLogger(), svc).Submit)

	w := doJSON(t, r, http.MethodPost, "/api/submit", gin.H{"text": "something hostile", "language": "en", "consent": true})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Story      *types.Story           `json:"story"`
			Moderation types.ModerationResult `json:"moderation"`
		} `json:"data"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "moderation_rejected", env.Error.Code)
	assert.Equal(t, "harassment", env.Error.Message)
	assert.Nil(t, env.Data.Story, "rejected text is never echoed back as a stored story")
	assert.False(t, env.Data.Moderation.Approved)
	assert.Equal(t, "high", env.Data.Moderation.Severity)
}

func TestSubmit_ConsentValidationIs400(t *testing.T) {
	svc := &fakeStoryService{
		submit: func(context.Context, uuid.UUID, services.SubmitInput) (*services.SubmitResult, error) {
			return nil, apierr.BadRequest("consent_required", fmt.Errorf("sharing consent is required"))
		},
	}

	r := gin.New()
	r.POST("/api/submit", asUser(uuid.New()), NewStoryHandler(testLogger(), svc).Submit)

	w := doJSON(t, r, http.MethodPost, "/api/submit", gin.H{"text": "a long enough story", "language": "en", "consent": false})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "consent_required", env.Error.Code)
}

func TestProcess_ReturnsStoryClassificationAndSuggestions(t *testing.T) {
	storyID := uuid.New()
	svc := &fakeStoryService{
		process: func(_ context.Context, id uuid.UUID, langs []string) (*services.ProcessResult, error) {
			assert.Equal(t, storyID, id)
			assert.Equal(t, []string{"es", "fr"}, langs)
			return &services.ProcessResult{
				Story:          &types.Story{ID: storyID, Status: types.StoryStatusApproved},
				Classification: types.Classification{Archetype: "Hero", EmotionTone: "hopeful"},
				Suggestions: []*types.SuggestedStory{
					{ID: uuid.New(), SourceStoryID: storyID, TargetLanguage: "es"},
					{ID: uuid.New(), SourceStoryID: storyID, TargetLanguage: "fr"},
				},
			}, nil
		},
	}

	r := gin.New()
	r.POST("/api/process-story", asUser(uuid.New()), NewStoryHandler(testLogger(), svc).Process)

	w := doJSON(t, r, http.MethodPost, "/api/process-story", gin.H{"storyId": storyID, "targetLanguages": []string{"es", "fr"}})
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data struct {
			Story          *types.Story            `json:"story"`
			Classification types.Classification    `json:"classification"`
			Suggestions    []*types.SuggestedStory `json:"suggestions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Data.Story)
	assert.Equal(t, storyID, env.Data.Story.ID)
	assert.Equal(t, "Hero", env.Data.Classification.Archetype)
	assert.Len(t, env.Data.Suggestions, 2)
}

func TestFeed_ClampsLimitBeforeOffset(t *testing.T) {
	var gotLimit, gotOffset int
	svc := &fakeFeedService{
		list: func(_ context.Context, _ uuid.UUID, language string, limit, offset int) ([]*services.FeedItem, error) {
			assert.Equal(t, "en", language)
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}

	r := gin.New()
	r.GET("/api/feed", asUser(uuid.New()), NewFeedHandler(testLogger(), svc).List)

	req := httptest.NewRequest(http.MethodGet, "/api/feed?lang=en&limit=0&page=3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 20, gotLimit, "bogus limit falls back to the default")
	assert.Equal(t, 40, gotOffset, "page 3 starts after two default pages")
}

func TestReact_Toggle(t *testing.T) {
	suggested := uuid.New()
	state := map[string]bool{}
	svc := &fakeSocialService{
		toggle: func(_ context.Context, _, id uuid.UUID, reactionType string) (string, error) {
			assert.Equal(t, suggested, id)
			key := reactionType
			if state[key] {
				delete(state, key)
				return services.ReactionRemoved, nil
			}
			state[key] = true
			return services.ReactionAdded, nil
		},
	}

	r := gin.New()
	r.POST("/api/react", asUser(uuid.New()), NewSocialHandler(testLogger(), svc).React)

	body := gin.H{"suggestedId": suggested, "type": "heart"}

	w := doJSON(t, r, http.MethodPost, "/api/react", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), services.ReactionAdded)

	w = doJSON(t, r, http.MethodPost, "/api/react", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), services.ReactionRemoved)
}

func TestFollow_SelfFollowIs400(t *testing.T) {
	user := uuid.New()
	svc := &fakeSocialService{
		follow: func(_ context.Context, follower, followed uuid.UUID, _ string) error {
			if follower == followed {
				return apierr.BadRequest("self_follow", fmt.Errorf("cannot follow yourself"))
			}
			return nil
		},
	}

	r := gin.New()
	r.POST("/api/follow", asUser(user), NewSocialHandler(testLogger(), svc).Follow)

	w := doJSON(t, r, http.MethodPost, "/api/follow", gin.H{"followedId": user, "action": "follow"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "self_follow")
}

func TestModerateComment_WellFormedOnProviderOutage(t *testing.T) {
	svc := &fakeSocialService{
		moderate: func(context.Context, string) types.ModerationResult {
			return services.FailClosedVerdict()
		},
	}

	r := gin.New()
	r.POST("/api/moderate-comment", asUser(uuid.New()), NewSocialHandler(testLogger(), svc).ModerateComment)

	w := doJSON(t, r, http.MethodPost, "/api/moderate-comment", gin.H{"text": "hello"})
	require.Equal(t, http.StatusOK, w.Code, "the pre-check endpoint never errors")

	var env struct {
		Success bool                   `json:"success"`
		Data    types.ModerationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.False(t, env.Data.Approved)
	assert.Equal(t, "medium", env.Data.Severity)
}
