package repos

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type CommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, c *types.Comment) error
	ListBySuggested(ctx context.Context, tx *gorm.DB, suggestedID uuid.UUID) ([]*types.Comment, error)
	CountBySuggestedIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]int64, error)
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return &commentRepo{db: db, log: baseLog.With("repo", "CommentRepo")}
}

func (r *commentRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *commentRepo) Create(ctx context.Context, tx *gorm.DB, c *types.Comment) error {
	return r.conn(tx).WithContext(ctx).Create(c).Error
}

func (r *commentRepo) ListBySuggested(ctx context.Context, tx *gorm.DB, suggestedID uuid.UUID) ([]*types.Comment, error) {
	var results []*types.Comment
	if err := r.conn(tx).WithContext(ctx).
		Where("suggested_id = ?", suggestedID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *commentRepo) CountBySuggestedIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		SuggestedID uuid.UUID
		N           int64
	}
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Comment{}).
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
