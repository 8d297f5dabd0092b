package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/model"
)

type ChannelRequestRepository interface {
	Create(ctx context.Context, req *model.ChannelRequest) error
	GetByID(ctx context.Context, id string) (*model.ChannelRequest, error)
	HasPending(ctx context.Context, userID string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]*model.ChannelRequest, error)
	ListPending(ctx context.Context) ([]*model.ChannelRequest, error)
	SetStatus(ctx context.Context, id string, status model.RequestStatus, adminResponse string) error
	Update(ctx context.Context, id string, updates map[string]any) error
	Delete(ctx context.Context, id string) error
}

type channelRequestRepository struct {
	db *gorm.DB
}

func NewChannelRequestRepository(db *gorm.DB) ChannelRequestRepository {
	return &channelRequestRepository{db: db}
}

func (r *channelRequestRepository) Create(ctx context.Context, req *model.ChannelRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = model.RequestPending
	}
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *channelRequestRepository) GetByID(ctx context.Context, id string) (*model.ChannelRequest, error) {
	var req model.ChannelRequest
	if err := r.db.WithContext(ctx).Preload("User").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *channelRequestRepository) HasPending(ctx context.Context, userID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.ChannelRequest{}).
		Where("user_id = ? AND status = ?", userID, model.RequestPending).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *channelRequestRepository) ListForUser(ctx context.Context, userID string) ([]*model.ChannelRequest, error) {
	var res []*model.ChannelRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&res).Error
	return res, err
}

func (r *channelRequestRepository) ListPending(ctx context.Context) ([]*model.ChannelRequest, error) {
	var res []*model.ChannelRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", model.RequestPending).
		Order("created_at DESC").
		Find(&res).Error
	return res, err
}

func (r *channelRequestRepository) SetStatus(ctx context.Context, id string, status model.RequestStatus, adminResponse string) error {
	return r.db.WithContext(ctx).Model(&model.ChannelRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"admin_response": adminResponse,
			"updated_at":     time.Now(),
		}).Error
}

func (r *channelRequestRepository) Update(ctx context.Context, id string, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&model.ChannelRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *channelRequestRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.ChannelRequest{}, "id = ?", id).Error
}
