package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/sonder-backend/internal/http/response"
	"github.com/yungbote/sonder-backend/internal/platform/apierr"
	"github.com/yungbote/sonder-backend/internal/platform/ctxutil"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"github.com/yungbote/sonder-backend/internal/services"
)

type SocialHandler struct {
	log    *logger.Logger
	social services.SocialService
}

func NewSocialHandler(log *logger.Logger, social services.SocialService) *SocialHandler {
	return &SocialHandler{log: log.With("handler", "SocialHandler"), social: social}
}

// React is POST /api/react.
func (h *SocialHandler) React(c *gin.Context) {
	var in struct {
		SuggestedID uuid.UUID `json:"suggestedId"`
		Type        string    `json:"type"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apierr.BadRequest("invalid_body", err))
		return
	}
	if in.SuggestedID == uuid.Nil {
		response.Err(c, apierr.BadRequest("suggested_id_required", fmt.Errorf("suggestedId is required")))
		return
	}

	action, err := h.social.ToggleReaction(c.Request.Context(), ctxutil.UserID(c.Request.Context()), in.SuggestedID, in.Type)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"action": action})
}

// ListComments is GET /api/comment?suggestedId=.
func (h *SocialHandler) ListComments(c *gin.Context) {
	suggestedID, err := uuid.Parse(c.Query("suggestedId"))
	if err != nil {
		response.Err(c, apierr.BadRequest("suggested_id_required", fmt.Errorf("suggestedId query parameter is required")))
		return
	}

	comments, err := h.social.ListComments(c.Request.Context(), suggestedID)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"comments": comments})
}

// CreateComment is POST /api/comment. A gate rejection is a successful
// response carrying the verdict, not an HTTP error.
func (h *SocialHandler) CreateComment(c *gin.Context) {
	var in struct {
		SuggestedID uuid.UUID `json:"suggestedId"`
		Text        string    `json:"text"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apierr.BadRequest("invalid_body", err))
		return
	}

	comment, verdict, err := h.social.CreateComment(c.Request.Context(), ctxutil.UserID(c.Request.Context()), in.SuggestedID, in.Text)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"comment": comment, "moderation": verdict})
}

// ModerateComment is POST /api/moderate-comment: a pre-check for the client.
// Always 200; a gate outage yields the fail-closed verdict.
func (h *SocialHandler) ModerateComment(c *gin.Context) {
	var in struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apierr.BadRequest("invalid_body", err))
		return
	}

	verdict := h.social.ModerateText(c.Request.Context(), in.Text)
	response.OK(c, http.StatusOK, verdict)
}

// Report is POST /api/report.
func (h *SocialHandler) Report(c *gin.Context) {
	var in struct {
		SuggestedID uuid.UUID `json:"suggestedId"`
		Reason      string    `json:"reason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apierr.BadRequest("invalid_body", err))
		return
	}

	rep, err := h.social.Report(c.Request.Context(), ctxutil.UserID(c.Request.Context()), in.SuggestedID, in.Reason)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"report": rep})
}

// Follow is POST /api/follow.
func (h *SocialHandler) Follow(c *gin.Context) {
	var in struct {
		FollowedID uuid.UUID `json:"followedId"`
		Action     string    `json:"action"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apierr.BadRequest("invalid_body", err))
		return
	}
	if in.FollowedID == uuid.Nil {
		response.Err(c, apierr.BadRequest("followed_id_required", fmt.Errorf("followedId is required")))
		return
	}

	if err := h.social.SetFollow(c.Request.Context(), ctxutil.UserID(c.Request.Context()), in.FollowedID, in.Action); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"action": in.Action})
}

// Profile is GET /api/profile/:id.
func (h *SocialHandler) Profile(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Err(c, apierr.BadRequest("invalid_user_id", err))
		return
	}

	view, err := h.social.GetProfile(c.Request.Context(), ctxutil.UserID(c.Request.Context()), userID)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, view)
}
