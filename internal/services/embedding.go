package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/sonder-backend/internal/clients/jina"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

// EmbeddingService turns story text into the vector the matcher compares.
type EmbeddingService interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	Model() string
}

type embeddingService struct {
	log    *logger.Logger
	client jina.Client
}

func NewEmbeddingService(log *logger.Logger, client jina.Client) EmbeddingService {
	return &embeddingService{log: log.With("service", "EmbeddingService"), client: client}
}

func (s *embeddingService) Model() string { return s.client.Model() }

func (s *embeddingService) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("embed: empty text")
	}
	vecs, err := s.client.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embed: provider returned no vector")
	}
	return vecs[0], nil
}
