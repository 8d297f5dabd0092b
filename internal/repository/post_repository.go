package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListByChannel(ctx context.Context, channelID string, limit int) ([]*model.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Post, error)
	ListAll(ctx context.Context) ([]*model.Post, error)
	ListFlagged(ctx context.Context) ([]*model.Post, error)
	Delete(ctx context.Context, id string) error
	SetFlagged(ctx context.Context, id string, flagged bool) error
	AdjustLikes(ctx context.Context, id string, delta int) error
	AdjustReplies(ctx context.Context, id string, delta int) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Channel").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) ListByChannel(ctx context.Context, channelID string, limit int) ([]*model.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Channel").
		Where("channel_id = ?", channelID).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Preload("Channel").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&res).Error
	return res, err
}

func (r *postRepository) ListAll(ctx context.Context) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Channel").
		Order("created_at DESC").
		Find(&res).Error
	return res, err
}

func (r *postRepository) ListFlagged(ctx context.Context) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Channel").
		Where("is_flagged = ?", true).
		Order("created_at DESC").
		Find(&res).Error
	return res, err
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Post{}, "id = ?", id).Error
}

func (r *postRepository) SetFlagged(ctx context.Context, id string, flagged bool) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Update("is_flagged", flagged).Error
}

// AdjustLikes moves the denormalized counter with a single conditional
// update expression; decrements never take the counter below zero.
func (r *postRepository) AdjustLikes(ctx context.Context, id string, delta int) error {
	q := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("likes_count >= ?", -delta)
	}
	return q.Update("likes_count", gorm.Expr("likes_count + ?", delta)).Error
}

func (r *postRepository) AdjustReplies(ctx context.Context, id string, delta int) error {
	q := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("replies_count >= ?", -delta)
	}
	return q.Update("replies_count", gorm.Expr("replies_count + ?", delta)).Error
}
