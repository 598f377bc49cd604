package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type SuggestedStoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, s *types.SuggestedStory) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SuggestedStory, error)
	// FindMatched returns an existing matched rendition for (source, language),
	// or nil when none exists. Fallback rows are never reused across sources.
	FindMatched(ctx context.Context, tx *gorm.DB, sourceStoryID uuid.UUID, language string) (*types.SuggestedStory, error)
	ListByLanguage(ctx context.Context, tx *gorm.DB, language string, limit, offset int) ([]*types.SuggestedStory, error)
}

type suggestedStoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSuggestedStoryRepo(db *gorm.DB, baseLog *logger.Logger) SuggestedStoryRepo {
	return &suggestedStoryRepo{db: db, log: baseLog.With("repo", "SuggestedStoryRepo")}
}

func (r *suggestedStoryRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *suggestedStoryRepo) Create(ctx context.Context, tx *gorm.DB, s *types.SuggestedStory) error {
	return r.conn(tx).WithContext(ctx).Create(s).Error
}

func (r *suggestedStoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SuggestedStory, error) {
	var s types.SuggestedStory
	if err := r.conn(tx).WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *suggestedStoryRepo) FindMatched(ctx context.Context, tx *gorm.DB, sourceStoryID uuid.UUID, language string) (*types.SuggestedStory, error) {
	var s types.SuggestedStory
	err := r.conn(tx).WithContext(ctx).
		Where("source_story_id = ? AND target_language = ? AND generation_type = ?",
			sourceStoryID, language, types.GenerationMatched).
		Order("created_at ASC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *suggestedStoryRepo) ListByLanguage(ctx context.Context, tx *gorm.DB, language string, limit, offset int) ([]*types.SuggestedStory, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var results []*types.SuggestedStory
	if err := r.conn(tx).WithContext(ctx).
		Where("target_language = ?", language).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
