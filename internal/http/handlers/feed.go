package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sonder-backend/internal/http/response"
	"github.com/yungbote/sonder-backend/internal/platform/ctxutil"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"github.com/yungbote/sonder-backend/internal/services"
)

type FeedHandler struct {
	log  *logger.Logger
	feed services.FeedService
}

func NewFeedHandler(log *logger.Logger, feed services.FeedService) *FeedHandler {
	return &FeedHandler{log: log.With("handler", "FeedHandler"), feed: feed}
}

// List is GET /api/feed?lang=&page=&limit=.
func (h *FeedHandler) List(c *gin.Context) {
	// Clamp before deriving the offset so a bogus limit can't skew which
	// page comes back.
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	items, err := h.feed.List(c.Request.Context(), ctxutil.UserID(c.Request.Context()), c.Query("lang"), limit, offset)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"items": items, "page": page})
}
