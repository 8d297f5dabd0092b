package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
)

// defaultChannelEmoji marks channels born from user requests.
const defaultChannelEmoji = "💬"

type ChannelRequestService interface {
	Create(ctx context.Context, userID, channelName, description, reason string) (*model.ChannelRequest, error)
	ListForUser(ctx context.Context, userID string) ([]*model.ChannelRequest, error)
	ListPending(ctx context.Context) ([]*model.ChannelRequest, error)
	Approve(ctx context.Context, requestID, adminID string) (*model.Channel, error)
	Reject(ctx context.Context, requestID, reason string) error
	NeedsInfo(ctx context.Context, requestID, question string) error
	Update(ctx context.Context, requestID, userID, channelName, description, reason string) (*model.ChannelRequest, error)
	Cancel(ctx context.Context, requestID, userID string) error
}

type channelRequestService struct {
	db       *gorm.DB
	requests repository.ChannelRequestRepository
	channels repository.ChannelRepository
	notifier NotificationService
}

func NewChannelRequestService(db *gorm.DB, requests repository.ChannelRequestRepository, channels repository.ChannelRepository, notifier NotificationService) ChannelRequestService {
	return &channelRequestService{db: db, requests: requests, channels: channels, notifier: notifier}
}

// Create records a new channel request. A user may only have one request in
// flight at a time.
func (s *channelRequestService) Create(ctx context.Context, userID, channelName, description, reason string) (*model.ChannelRequest, error) {
	if channelName == "" {
		return nil, &ValidationError{Field: "channel_name", Msg: "must not be empty"}
	}
	pending, err := s.requests.HasPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrPendingRequestExists
	}
	req := &model.ChannelRequest{
		UserID:      userID,
		ChannelName: channelName,
		Description: description,
		Reason:      reason,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return s.requests.GetByID(ctx, req.ID)
}

func (s *channelRequestService) ListForUser(ctx context.Context, userID string) ([]*model.ChannelRequest, error) {
	return s.requests.ListForUser(ctx, userID)
}

func (s *channelRequestService) ListPending(ctx context.Context) ([]*model.ChannelRequest, error) {
	return s.requests.ListPending(ctx)
}

// Approve creates the channel and resolves the request in one transaction.
// The requester is auto-joined to their new channel.
func (s *channelRequestService) Approve(ctx context.Context, requestID, adminID string) (*model.Channel, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestPending && req.Status != model.RequestNeedsInfo {
		return nil, ErrRequestNotPending
	}
	if existing, err := s.channels.GetByName(ctx, req.ChannelName); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &ValidationError{Field: "channel_name", Msg: "a channel with this name already exists"}
	}

	channel := &model.Channel{
		Name:        req.ChannelName,
		Description: req.Description,
		Emoji:       defaultChannelEmoji,
		CreatedBy:   adminID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		channels := repository.NewChannelRepository(tx)
		if err := channels.Create(ctx, channel); err != nil {
			return err
		}
		if err := channels.Join(ctx, req.UserID, channel.ID); err != nil {
			return err
		}
		return repository.NewChannelRequestRepository(tx).
			SetStatus(ctx, requestID, model.RequestApproved, "Channel created successfully")
	})
	if err != nil {
		return nil, err
	}

	logNotifyFailure("channel_approved", s.notifier.Notify(ctx, req.UserID, model.NotificationChannelApproved,
		"Channel Request Approved",
		fmt.Sprintf("Your channel %q has been created!", req.ChannelName)))
	return channel, nil
}

func (s *channelRequestService) Reject(ctx context.Context, requestID, reason string) error {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != model.RequestPending && req.Status != model.RequestNeedsInfo {
		return ErrRequestNotPending
	}
	if err := s.requests.SetStatus(ctx, requestID, model.RequestRejected, reason); err != nil {
		return err
	}
	logNotifyFailure("channel_rejected", s.notifier.Notify(ctx, req.UserID, model.NotificationChannelRejected,
		"Channel Request Rejected",
		fmt.Sprintf("Your channel request %q was rejected: %s", req.ChannelName, reason)))
	return nil
}

// NeedsInfo sends the request back to the user with a question; the user
// can edit and resubmit.
func (s *channelRequestService) NeedsInfo(ctx context.Context, requestID, question string) error {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != model.RequestPending {
		return ErrRequestNotPending
	}
	if err := s.requests.SetStatus(ctx, requestID, model.RequestNeedsInfo, question); err != nil {
		return err
	}
	logNotifyFailure("channel_needs_info", s.notifier.Notify(ctx, req.UserID, model.NotificationChannelRejected,
		"More Information Needed",
		fmt.Sprintf("Your channel request %q needs more detail: %s", req.ChannelName, question)))
	return nil
}

// Update lets the requester revise a pending or needs-info request; editing
// a needs-info request moves it back into the pending queue.
func (s *channelRequestService) Update(ctx context.Context, requestID, userID, channelName, description, reason string) (*model.ChannelRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, ErrNotAllowed
	}
	if req.Status != model.RequestPending && req.Status != model.RequestNeedsInfo {
		return nil, ErrRequestNotPending
	}
	updates := map[string]any{
		"status":         model.RequestPending,
		"admin_response": "",
	}
	if channelName != "" {
		updates["channel_name"] = channelName
	}
	if description != "" {
		updates["description"] = description
	}
	if reason != "" {
		updates["reason"] = reason
	}
	if err := s.requests.Update(ctx, requestID, updates); err != nil {
		return nil, err
	}
	return s.requests.GetByID(ctx, requestID)
}

func (s *channelRequestService) Cancel(ctx context.Context, requestID, userID string) error {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.UserID != userID {
		return ErrNotAllowed
	}
	if req.Status != model.RequestPending && req.Status != model.RequestNeedsInfo {
		return ErrRequestNotPending
	}
	return s.requests.Delete(ctx, requestID)
}
