package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/model"
)

type ReplyRepository interface {
	Create(ctx context.Context, reply *model.Reply) error
	GetByID(ctx context.Context, id string) (*model.Reply, error)
	ListByPost(ctx context.Context, postID string) ([]*model.Reply, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Reply, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Reply, error)
	Delete(ctx context.Context, id string) error
	SetFlagged(ctx context.Context, id string, flagged bool) error
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository { return &replyRepository{db: db} }

func (r *replyRepository) Create(ctx context.Context, reply *model.Reply) error {
	if reply.ID == "" {
		reply.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *replyRepository) GetByID(ctx context.Context, id string) (*model.Reply, error) {
	var rep model.Reply
	if err := r.db.WithContext(ctx).Preload("User").First(&rep, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

// ListByPost returns unflagged replies in creation order; the service
// materializes the one-level tree from this flat list.
func (r *replyRepository) ListByPost(ctx context.Context, postID string) ([]*model.Reply, error) {
	var res []*model.Reply
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ? AND is_flagged = ?", postID, false).
		Order("created_at").
		Find(&res).Error
	return res, err
}

func (r *replyRepository) ListByUser(ctx context.Context, userID string) ([]*model.Reply, error) {
	var res []*model.Reply
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&res).Error
	return res, err
}

func (r *replyRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Reply, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res []*model.Reply
	err := r.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *replyRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Reply{}, "id = ?", id).Error
}

func (r *replyRepository) SetFlagged(ctx context.Context, id string, flagged bool) error {
	return r.db.WithContext(ctx).Model(&model.Reply{}).
		Where("id = ?", id).
		Update("is_flagged", flagged).Error
}
