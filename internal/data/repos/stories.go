package repos

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type StoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, story *types.Story) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Story, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Story, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status string, limit int) ([]*types.Story, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) (*types.Story, error)
}

type storyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoryRepo(db *gorm.DB, baseLog *logger.Logger) StoryRepo {
	return &storyRepo{db: db, log: baseLog.With("repo", "StoryRepo")}
}

func (r *storyRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *storyRepo) Create(ctx context.Context, tx *gorm.DB, story *types.Story) error {
	return r.conn(tx).WithContext(ctx).Create(story).Error
}

func (r *storyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Story, error) {
	var s types.Story
	if err := r.conn(tx).WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *storyRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Story, error) {
	var results []*types.Story
	if len(ids) == 0 {
		return results, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *storyRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status string, limit int) ([]*types.Story, error) {
	if limit <= 0 {
		limit = 50
	}
	var results []*types.Story
	if err := r.conn(tx).WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *storyRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) (*types.Story, error) {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Model(&types.Story{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return nil, err
	}
	var s types.Story
	if err := conn.First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
