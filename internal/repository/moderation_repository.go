package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/apexquest/apexquest/internal/model"
)

type WarningRepository interface {
	Create(ctx context.Context, w *model.Warning) error
	CountActive(ctx context.Context, userID string, since time.Time) (int64, error)
	ListActive(ctx context.Context, userID string, since time.Time) ([]*model.Warning, error)
	ListRecent(ctx context.Context, since time.Time) ([]*model.Warning, error)
}

type warningRepository struct {
	db *gorm.DB
}

func NewWarningRepository(db *gorm.DB) WarningRepository { return &warningRepository{db: db} }

func (r *warningRepository) Create(ctx context.Context, w *model.Warning) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *warningRepository) CountActive(ctx context.Context, userID string, since time.Time) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Warning{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&cnt).Error
	return cnt, err
}

func (r *warningRepository) ListActive(ctx context.Context, userID string, since time.Time) ([]*model.Warning, error) {
	var res []*model.Warning
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Find(&res).Error
	return res, err
}

// ListRecent returns all warnings issued since the cutoff, across users.
func (r *warningRepository) ListRecent(ctx context.Context, since time.Time) ([]*model.Warning, error) {
	var res []*model.Warning
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&res).Error
	return res, err
}

type BanRepository interface {
	Upsert(ctx context.Context, ban *model.Ban) error
	GetActiveByEmail(ctx context.Context, email string, now time.Time) (*model.Ban, error)
	CountByEmail(ctx context.Context, email string) (int64, error)
	DeleteByEmail(ctx context.Context, email string) error
	ListActive(ctx context.Context, now time.Time) ([]*model.Ban, error)
}

type banRepository struct {
	db *gorm.DB
}

func NewBanRepository(db *gorm.DB) BanRepository { return &banRepository{db: db} }

// Upsert keeps at most one ban row per email; re-banning replaces the
// previous reason and expiry.
func (r *banRepository) Upsert(ctx context.Context, ban *model.Ban) error {
	if ban.ID == "" {
		ban.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "banned_by", "expires_at"}),
	}).Create(ban).Error
}

// GetActiveByEmail returns nil when no ban is in force. A null expiry is a
// permanent ban.
func (r *banRepository) GetActiveByEmail(ctx context.Context, email string, now time.Time) (*model.Ban, error) {
	var b model.Ban
	err := r.db.WithContext(ctx).
		Where("email = ? AND (expires_at IS NULL OR expires_at > ?)", email, now).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *banRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Ban{}).
		Where("email = ?", email).
		Count(&cnt).Error
	return cnt, err
}

func (r *banRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Where("email = ?", email).Delete(&model.Ban{}).Error
}

func (r *banRepository) ListActive(ctx context.Context, now time.Time) ([]*model.Ban, error) {
	var res []*model.Ban
	err := r.db.WithContext(ctx).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		Find(&res).Error
	return res, err
}
