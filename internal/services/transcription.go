package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/yungbote/sonder-backend/internal/clients/openai"
	"github.com/yungbote/sonder-backend/internal/platform/apierr"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

// maxAudioBytes caps uploads at 25MB, the Whisper API's own limit.
const maxAudioBytes = 25 << 20

// TranscriptionService converts uploaded voice recordings to text for the
// submission form.
type TranscriptionService interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader, size int64, language string) (string, error)
}

type transcriptionService struct {
	log    *logger.Logger
	client openai.Client
}

func NewTranscriptionService(log *logger.Logger, client openai.Client) TranscriptionService {
	return &transcriptionService{log: log.With("service", "TranscriptionService"), client: client}
}

func (s *transcriptionService) Transcribe(ctx context.Context, filename string, audio io.Reader, size int64, language string) (string, error) {
	if audio == nil || size == 0 {
		return "", apierr.BadRequest("audio_required", fmt.Errorf("an audio file is required"))
	}
	if size > maxAudioBytes {
		return "", apierr.BadRequest("audio_too_large", fmt.Errorf("audio exceeds %d bytes", maxAudioBytes))
	}

	text, err := s.client.Transcribe(ctx, filename, io.LimitReader(audio, maxAudioBytes), language)
	if err != nil {
		return "", apierr.New(http.StatusServiceUnavailable, "transcription_unavailable", err)
	}
	if text == "" {
		return "", apierr.BadRequest("audio_unintelligible", fmt.Errorf("no speech detected"))
	}
	return text, nil
}
