package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/sonder-backend/internal/data/repos"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

// ReceivedItem pairs a ledger row with the delivered story text.
type ReceivedItem struct {
	Received  *types.UserReceivedStory `json:"received"`
	Suggested *types.SuggestedStory    `json:"suggested_story,omitempty"`
}

// ReceivedService reads a user's delivery ledger and flips read flags.
type ReceivedService interface {
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ReceivedItem, error)
	MarkRead(ctx context.Context, userID, receivedID uuid.UUID) error
}

type receivedService struct {
	log       *logger.Logger
	received  repos.ReceivedStoryRepo
	suggested repos.SuggestedStoryRepo
}

func NewReceivedService(log *logger.Logger, received repos.ReceivedStoryRepo, suggested repos.SuggestedStoryRepo) ReceivedService {
	return &receivedService{
		log:       log.With("service", "ReceivedService"),
		received:  received,
		suggested: suggested,
	}
}

func (s *receivedService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ReceivedItem, error) {
	rows, err := s.received.ListByUser(ctx, nil, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]*ReceivedItem, 0, len(rows))
	for _, row := range rows {
		item := &ReceivedItem{Received: row}
		sugg, err := s.suggested.GetByID(ctx, nil, row.SuggestedStoryID)
		if err != nil {
			s.log.Warn("suggested story missing for ledger row", "error", err)
		} else {
			item.Suggested = sugg
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *receivedService) MarkRead(ctx context.Context, userID, receivedID uuid.UUID) error {
	return s.received.MarkRead(ctx, nil, receivedID, userID)
}
