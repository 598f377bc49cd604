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

type ProfileRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error)
	// Ensure provisions a bare profile row for userID if none exists yet.
	Ensure(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *profileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error) {
	var p types.Profile
	err := r.conn(tx).WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) Ensure(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error) {
	conn := r.conn(tx).WithContext(ctx)
	p := &types.Profile{UserID: userID, PreferredLanguage: "en"}
	if err := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(p).Error; err != nil {
		return nil, err
	}
	var out types.Profile
	if err := conn.First(&out, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
