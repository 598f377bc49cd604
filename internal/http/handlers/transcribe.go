package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sonder-backend/internal/http/response"
	"github.com/yungbote/sonder-backend/internal/platform/apierr"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"github.com/yungbote/sonder-backend/internal/services"
)

type TranscribeHandler struct {
	log           *logger.Logger
	transcription services.TranscriptionService
}

func NewTranscribeHandler(log *logger.Logger, transcription services.TranscriptionService) *TranscribeHandler {
	return &TranscribeHandler{log: log.With("handler", "TranscribeHandler"), transcription: transcription}
}

// Transcribe is POST /api/transcribe (multipart: audio file + language field).
func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		response.Err(c, apierr.BadRequest("audio_required", fmt.Errorf("multipart field 'audio' is required")))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Err(c, err)
		return
	}
	defer file.Close()

	text, err := h.transcription.Transcribe(
		c.Request.Context(),
		fileHeader.Filename,
		file,
		fileHeader.Size,
		c.PostForm("language"),
	)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"text": text})
}
