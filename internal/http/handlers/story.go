package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/sonder-backend/internal/http/response"
	"github.com/yungbote/sonder-backend/internal/platform/apierr"
	"github.com/yungbote/sonder-backend/internal/platform/ctxutil"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"github.com/yungbote/sonder-backend/internal/services"
)

type StoryHandler struct {
	log     *logger.Logger
	stories services.StoryService
}

func NewStoryHandler(log *logger.Logger, stories services.StoryService) *StoryHandler {
	return &StoryHandler{log: log.With("handler", "StoryHandler"), stories: stories}
}

// Submit is POST /api/submit.
func (h *StoryHandler) Submit(c *gin.Context) {
	var in services.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apierr.BadRequest("invalid_body", err))
		return
	}

	result, err := h.stories.Submit(c.Request.Context(), ctxutil.UserID(c.Request.Context()), in)
	if err != nil {
		response.Err(c, err)
		return
	}

	if !result.Moderation.Approved {
		response.Reject(c, http.StatusBadRequest, "moderation_rejected", result.Moderation.Reason,
			gin.H{"moderation": result.Moderation})
		return
	}

	out := gin.H{
		"story":      result.Story,
		"moderation": result.Moderation,
	}
	if result.Classification != nil {
		out["classification"] = result.Classification
	}
	if result.Received != nil {
		out["receivedStoryId"] = result.Received.ID
		out["suggested_story"] = result.Suggested
	} else {
		out["receivedStoryId"] = nil
	}
	response.OK(c, http.StatusOK, out)
}

// ListModeration is GET /api/moderate.
func (h *StoryHandler) ListModeration(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	stories, err := h.stories.ListForModeration(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"stories": stories})
}

// Decide is POST /api/moderate.
func (h *StoryHandler) Decide(c *gin.Context) {
	var in struct {
		StoryID uuid.UUID `json:"storyId"`
		Action  string    `json:"action"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apierr.BadRequest("invalid_body", err))
		return
	}
	if in.StoryID == uuid.Nil {
		response.Err(c, apierr.BadRequest("story_id_required", fmt.Errorf("storyId is required")))
		return
	}

	story, err := h.stories.Decide(c.Request.Context(), in.StoryID, in.Action)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"story": story})
}

// Process is POST /api/process-story.
func (h *StoryHandler) Process(c *gin.Context) {
	var in struct {
		StoryID         uuid.UUID `json:"storyId"`
		TargetLanguages []string  `json:"targetLanguages"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apierr.BadRequest("invalid_body", err))
		return
	}
	if in.StoryID == uuid.Nil {
		response.Err(c, apierr.BadRequest("story_id_required", fmt.Errorf("storyId is required")))
		return
	}

	result, err := h.stories.Process(c.Request.Context(), in.StoryID, in.TargetLanguages)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"story":          result.Story,
		"classification": result.Classification,
		"suggestions":    result.Suggestions,
	})
}
