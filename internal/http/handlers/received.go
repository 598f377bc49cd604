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

type ReceivedHandler struct {
	log      *logger.Logger
	received services.ReceivedService
}

func NewReceivedHandler(log *logger.Logger, received services.ReceivedService) *ReceivedHandler {
	return &ReceivedHandler{log: log.With("handler", "ReceivedHandler"), received: received}
}

// List is GET /api/received.
func (h *ReceivedHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.received.List(c.Request.Context(), ctxutil.UserID(c.Request.Context()), limit, offset)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"items": items})
}

// MarkRead is POST /api/received.
func (h *ReceivedHandler) MarkRead(c *gin.Context) {
	var in struct {
		ReceivedID uuid.UUID `json:"receivedId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, apierr.BadRequest("invalid_body", err))
		return
	}
	if in.ReceivedID == uuid.Nil {
		response.Err(c, apierr.BadRequest("received_id_required", fmt.Errorf("receivedId is required")))
		return
	}

	if err := h.received.MarkRead(c.Request.Context(), ctxutil.UserID(c.Request.Context()), in.ReceivedID); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"read": true})
}
