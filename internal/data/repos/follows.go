package repos

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/sonder-backend/internal/domain"
	"github.com/yungbote/sonder-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepo interface {
	Create(ctx context.Context, tx *gorm.DB, f *types.Follow) error
	Delete(ctx context.Context, tx *gorm.DB, follower, followed uuid.UUID) error
	Exists(ctx context.Context, tx *gorm.DB, follower, followed uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	CountFollowing(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type followRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFollowRepo(db *gorm.DB, baseLog *logger.Logger) FollowRepo {
	return &followRepo{db: db, log: baseLog.With("repo", "FollowRepo")}
}

func (r *followRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create is idempotent: a repeat follow hits the unique pair index and is a
// no-op.
func (r *followRepo) Create(ctx context.Context, tx *gorm.DB, f *types.Follow) error {
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower"}, {Name: "followed"}},
			DoNothing: true,
		}).
		Create(f).Error
}

func (r *followRepo) Delete(ctx context.Context, tx *gorm.DB, follower, followed uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("follower = ? AND followed = ?", follower, followed).
		Delete(&types.Follow{}).Error
}

func (r *followRepo) Exists(ctx context.Context, tx *gorm.DB, follower, followed uuid.UUID) (bool, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Follow{}).
		Where("follower = ? AND followed = ?", follower, followed).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *followRepo) CountFollowers(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).
		Model(&types.Follow{}).
		Where("followed = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *followRepo) CountFollowing(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).
		Model(&types.Follow{}).
		Where("follower = ?", userID).
		Count(&count).Error
	return count, err
}
