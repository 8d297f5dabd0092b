package service

import (
	"context"

	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
)

type ChannelService interface {
	List(ctx context.Context) ([]*model.Channel, error)
	ListForUser(ctx context.Context, userID string) ([]*model.Channel, error)
	Create(ctx context.Context, name, description, emoji, createdBy string) (*model.Channel, error)
	Join(ctx context.Context, userID, channelID string) error
	Leave(ctx context.Context, userID, channelID string) error
}

type channelService struct {
	channels repository.ChannelRepository
}

func NewChannelService(channels repository.ChannelRepository) ChannelService {
	return &channelService{channels: channels}
}

func (s *channelService) List(ctx context.Context) ([]*model.Channel, error) {
	return s.channels.List(ctx)
}

func (s *channelService) ListForUser(ctx context.Context, userID string) ([]*model.Channel, error) {
	return s.channels.ListForUser(ctx, userID)
}

func (s *channelService) Create(ctx context.Context, name, description, emoji, createdBy string) (*model.Channel, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Msg: "must not be empty"}
	}
	ch := &model.Channel{Name: name, Description: description, Emoji: emoji, CreatedBy: createdBy}
	if err := s.channels.Create(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *channelService) Join(ctx context.Context, userID, channelID string) error {
	return s.channels.Join(ctx, userID, channelID)
}

func (s *channelService) Leave(ctx context.Context, userID, channelID string) error {
	return s.channels.Leave(ctx, userID, channelID)
}
