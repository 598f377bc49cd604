package repos

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoryEmbeddingRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, emb *types.StoryEmbedding) error
	GetByStoryID(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) (*types.StoryEmbedding, error)
	// ListApprovedCandidates returns the embeddings of every approved story
	// except exclude, oldest first so ranking tie-breaks stay deterministic.
	ListApprovedCandidates(ctx context.Context, tx *gorm.DB, exclude uuid.UUID) ([]*types.StoryEmbedding, error)
}

type storyEmbeddingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoryEmbeddingRepo(db *gorm.DB, baseLog *logger.Logger) StoryEmbeddingRepo {
	return &storyEmbeddingRepo{db: db, log: baseLog.With("repo", "StoryEmbeddingRepo")}
}

func (r *storyEmbeddingRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *storyEmbeddingRepo) Upsert(ctx context.Context, tx *gorm.DB, emb *types.StoryEmbedding) error {
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "story_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding", "archetype", "emotion_tone", "embed_model"}),
		}).
		Create(emb).Error
}

func (r *storyEmbeddingRepo) GetByStoryID(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) (*types.StoryEmbedding, error) {
	var e types.StoryEmbedding
	if err := r.conn(tx).WithContext(ctx).First(&e, "story_id = ?", storyID).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *storyEmbeddingRepo) ListApprovedCandidates(ctx context.Context, tx *gorm.DB, exclude uuid.UUID) ([]*types.StoryEmbedding, error) {
	var results []*types.StoryEmbedding
	if err := r.conn(tx).WithContext(ctx).
		Joins("JOIN stories ON stories.id = stories_embeddings.story_id").
		Where("stories.status = ?", types.StoryStatusApproved).
		Where("stories_embeddings.story_id <> ?", exclude).
		Order("stories_embeddings.created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
