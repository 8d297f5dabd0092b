package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/apexquest/apexquest/internal/model"
)

type ChannelRepository interface {
	Create(ctx context.Context, ch *model.Channel) error
	GetByID(ctx context.Context, id string) (*model.Channel, error)
	GetByName(ctx context.Context, name string) (*model.Channel, error)
	List(ctx context.Context) ([]*model.Channel, error)
	ListForUser(ctx context.Context, userID string) ([]*model.Channel, error)
	Join(ctx context.Context, userID, channelID string) error
	Leave(ctx context.Context, userID, channelID string) error
	IsMember(ctx context.Context, userID, channelID string) (bool, error)
}

type channelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) ChannelRepository { return &channelRepository{db: db} }

func (r *channelRepository) Create(ctx context.Context, ch *model.Channel) error {
	if ch.ID == "" {
		ch.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(ch).Error
}

func (r *channelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	var ch model.Channel
	if err := r.db.WithContext(ctx).First(&ch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *channelRepository) GetByName(ctx context.Context, name string) (*model.Channel, error) {
	var ch model.Channel
	err := r.db.WithContext(ctx).First(&ch, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *channelRepository) List(ctx context.Context) ([]*model.Channel, error) {
	var res []*model.Channel
	err := r.db.WithContext(ctx).Order("name").Find(&res).Error
	return res, err
}

func (r *channelRepository) ListForUser(ctx context.Context, userID string) ([]*model.Channel, error) {
	var res []*model.Channel
	err := r.db.WithContext(ctx).
		Joins("JOIN user_channels ON user_channels.channel_id = channels.id").
		Where("user_channels.user_id = ?", userID).
		Order("channels.name").
		Find(&res).Error
	return res, err
}

// Join is idempotent: re-joining an already-joined channel is a no-op.
func (r *channelRepository) Join(ctx context.Context, userID, channelID string) error {
	m := &model.Membership{ID: uuid.New().String(), UserID: userID, ChannelID: channelID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

func (r *channelRepository) Leave(ctx context.Context, userID, channelID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		Delete(&model.Membership{}).Error
}

func (r *channelRepository) IsMember(ctx context.Context, userID, channelID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Membership{}).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		Count(&cnt).Error
	return cnt > 0, err
}
