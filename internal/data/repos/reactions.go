package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ReactionRepo interface {
	Find(ctx context.Context, tx *gorm.DB, suggestedID, userID uuid.UUID, reactionType string) (*types.Reaction, error)
	Create(ctx context.Context, tx *gorm.DB, r *types.Reaction) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountBySuggestedIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	// UserReactions returns the caller's reaction type per suggestion id.
	UserReactions(ctx context.Context, tx *gorm.DB, userID uuid.UUID, suggestedIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

type reactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReactionRepo(db *gorm.DB, baseLog *logger.Logger) ReactionRepo {
	return &reactionRepo{db: db, log: baseLog.With("repo", "ReactionRepo")}
}

func (r *reactionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *reactionRepo) Find(ctx context.Context, tx *gorm.DB, suggestedID, userID uuid.UUID, reactionType string) (*types.Reaction, error) {
	var rec types.Reaction
	err := r.conn(tx).WithContext(ctx).
		Where("suggested_id = ? AND user_id = ? AND type = ?", suggestedID, userID, reactionType).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *reactionRepo) Create(ctx context.Context, tx *gorm.DB, rec *types.Reaction) error {
	return r.conn(tx).WithContext(ctx).Create(rec).Error
}

func (r *reactionRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).Delete(&types.Reaction{}, "id = ?", id).Error
}

func (r *reactionRepo) CountBySuggestedIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		SuggestedID uuid.UUID
		N           int64
	}
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Reaction{}).
		Select("suggested_id, COUNT(*) AS n").
		Where("suggested_id IN ?", ids).
		Group("suggested_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SuggestedID] = row.N
	}
	return out, nil
}

func (r *reactionRepo) UserReactions(ctx context.Context, tx *gorm.DB, userID uuid.UUID, suggestedIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(suggestedIDs))
	if len(suggestedIDs) == 0 || userID == uuid.Nil {
		return out, nil
	}
	var rows []*types.Reaction
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND suggested_id IN ?", userID, suggestedIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SuggestedID] = row.Type
	}
	return out, nil
}
