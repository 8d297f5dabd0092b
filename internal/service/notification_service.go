package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
	"github.com/apexquest/apexquest/pkg/logger"
)

// Broadcaster pushes an event to a connected user, if any. The realtime
// hub implements it; a nil-safe no-op keeps services testable without one.
type Broadcaster interface {
	Push(userID string, event any)
}

// NotificationEvent is the payload pushed over the realtime channel when a
// notification lands.
type NotificationEvent struct {
	Type         string              `json:"type"`
	Notification *model.Notification `json:"notification"`
}

type NotificationService interface {
	Notify(ctx context.Context, userID string, typ model.NotificationType, title, message string) error
	ListForUser(ctx context.Context, userID string) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

type notificationService struct {
	notifications repository.NotificationRepository
	cache         *UnreadCache
	broadcaster   Broadcaster
}

// NewNotificationService builds the service. cache and broadcaster may be
// nil; both degrade to direct repository access and no push.
func NewNotificationService(notifications repository.NotificationRepository, cache *UnreadCache, broadcaster Broadcaster) NotificationService {
	return &notificationService{notifications: notifications, cache: cache, broadcaster: broadcaster}
}

func (s *notificationService) Notify(ctx context.Context, userID string, typ model.NotificationType, title, message string) error {
	n := &model.Notification{UserID: userID, Type: typ, Title: title, Message: message}
	if err := s.notifications.Create(ctx, n); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	if s.broadcaster != nil {
		s.broadcaster.Push(userID, NotificationEvent{Type: "notification", Notification: n})
	}
	return nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID string) ([]*model.Notification, error) {
	return s.notifications.ListForUser(ctx, userID)
}

// UnreadCount serves from the redis cache when possible; a cache error
// falls through to the database.
func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if s.cache != nil {
		if count, ok := s.cache.Get(ctx, userID); ok {
			return count, nil
		}
	}
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, userID, count)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	return nil
}

// logNotifyFailure is used where a notification is a best-effort side
// effect of a larger operation that should not fail with it.
func logNotifyFailure(op string, err error) {
	if err != nil {
		logger.Warn("create notification failed", zap.String("op", op), zap.Error(err))
	}
}
