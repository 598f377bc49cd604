package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReceivedStoryRepo interface {
	// CreateOnce inserts the delivery record unless one already exists for the
	// same (user, triggering submission). It returns the surviving row either
	// way, so concurrent retries converge on a single delivery.
	CreateOnce(ctx context.Context, tx *gorm.DB, rec *types.UserReceivedStory) (*types.UserReceivedStory, bool, error)
	GetForSubmission(ctx context.Context, tx *gorm.DB, userID, triggeredByStoryID uuid.UUID) (*types.UserReceivedStory, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.UserReceivedStory, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error
}

type receivedStoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReceivedStoryRepo(db *gorm.DB, baseLog *logger.Logger) ReceivedStoryRepo {
	return &receivedStoryRepo{db: db, log: baseLog.With("repo", "ReceivedStoryRepo")}
}

func (r *receivedStoryRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *receivedStoryRepo) CreateOnce(ctx context.Context, tx *gorm.DB, rec *types.UserReceivedStory) (*types.UserReceivedStory, bool, error) {
	conn := r.conn(tx).WithContext(ctx)

	res := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "triggered_by_story_id"}},
		DoNothing: true,
	}).Create(rec)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return rec, true, nil
	}

	existing, err := r.GetForSubmission(ctx, tx, rec.UserID, rec.TriggeredByStoryID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *receivedStoryRepo) GetForSubmission(ctx context.Context, tx *gorm.DB, userID, triggeredByStoryID uuid.UUID) (*types.UserReceivedStory, error) {
	var rec types.UserReceivedStory
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND triggered_by_story_id = ?", userID, triggeredByStoryID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *receivedStoryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.UserReceivedStory, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var results []*types.UserReceivedStory
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MarkRead flips is_read to true; the flag never goes back.
func (r *receivedStoryRepo) MarkRead(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.UserReceivedStory{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}
