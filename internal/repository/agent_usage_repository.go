package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/model"
)

type AgentUsageRepository interface {
	Create(ctx context.Context, usage *model.AgentUsage) error
	CountForDate(ctx context.Context, userID, date string) (int64, error)
	Last(ctx context.Context, userID string) (*model.AgentUsage, error)
}

type agentUsageRepository struct {
	db *gorm.DB
}

func NewAgentUsageRepository(db *gorm.DB) AgentUsageRepository {
	return &agentUsageRepository{db: db}
}

func (r *agentUsageRepository) Create(ctx context.Context, usage *model.AgentUsage) error {
	if usage.ID == "" {
		usage.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(usage).Error
}

func (r *agentUsageRepository) CountForDate(ctx context.Context, userID, date string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.AgentUsage{}).
		Where("user_id = ? AND usage_date = ?", userID, date).
		Count(&cnt).Error
	return cnt, err
}

// Last returns the most recent usage row, or nil when the user has none.
func (r *agentUsageRepository) Last(ctx context.Context, userID string) (*model.AgentUsage, error) {
	var u model.AgentUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
