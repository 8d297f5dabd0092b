package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/model"
)

type FlagRepository interface {
	Create(ctx context.Context, flag *model.Flag) error
	Exists(ctx context.Context, targetID, flaggedBy string) (bool, error)
	ListByTarget(ctx context.Context, targetID string) ([]*model.Flag, error)
	ListTargetIDs(ctx context.Context, targetType model.FlagTargetType) ([]string, error)
	DeleteByTarget(ctx context.Context, targetID string) error
	CountByTarget(ctx context.Context, targetID string) (int64, error)
}

type flagRepository struct {
	db *gorm.DB
}

func NewFlagRepository(db *gorm.DB) FlagRepository { return &flagRepository{db: db} }

func (r *flagRepository) Create(ctx context.Context, flag *model.Flag) error {
	if flag.ID == "" {
		flag.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(flag).Error
}

func (r *flagRepository) Exists(ctx context.Context, targetID, flaggedBy string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Flag{}).
		Where("target_id = ? AND flagged_by = ?", targetID, flaggedBy).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *flagRepository) ListByTarget(ctx context.Context, targetID string) ([]*model.Flag, error) {
	var res []*model.Flag
	err := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("created_at").
		Find(&res).Error
	return res, err
}

func (r *flagRepository) ListTargetIDs(ctx context.Context, targetType model.FlagTargetType) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Flag{}).
		Distinct("target_id").
		Where("target_type = ?", targetType).
		Pluck("target_id", &ids).Error
	return ids, err
}

func (r *flagRepository) DeleteByTarget(ctx context.Context, targetID string) error {
	return r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Delete(&model.Flag{}).Error
}

func (r *flagRepository) CountByTarget(ctx context.Context, targetID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Flag{}).
		Where("target_id = ?", targetID).
		Count(&cnt).Error
	return cnt, err
}
