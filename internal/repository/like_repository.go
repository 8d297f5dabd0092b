package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/model"
)

type LikeRepository interface {
	Exists(ctx context.Context, userID, postID string) (bool, error)
	Create(ctx context.Context, userID, postID string) error
	Delete(ctx context.Context, userID, postID string) error
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *likeRepository) Create(ctx context.Context, userID, postID string) error {
	l := &model.Like{ID: uuid.New().String(), UserID: userID, PostID: postID}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *likeRepository) Delete(ctx context.Context, userID, postID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Like{}).Error
}
