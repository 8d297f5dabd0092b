package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
)

func newRequestService(db *gorm.DB) ChannelRequestService {
	notifier := NewNotificationService(repository.NewNotificationRepository(db), nil, nil)
	return NewChannelRequestService(db,
		repository.NewChannelRequestRepository(db),
		repository.NewChannelRepository(db),
		notifier)
}

func TestDuplicatePendingRequestRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestService(db)
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ctx := context.Background()

	_, err := svc.Create(ctx, user.ID, "Book Club", "weekly reads", "we love books")
	require.NoError(t, err)

	_, err = svc.Create(ctx, user.ID, "Chess Club", "daily puzzles", "")
	assert.ErrorIs(t, err, ErrPendingRequestExists)

	// Another user is unaffected.
	bob := seedUser(t, db, "bob@example.com", model.RoleUser)
	_, err = svc.Create(ctx, bob.ID, "Chess Club", "daily puzzles", "")
	assert.NoError(t, err)
}

func TestApproveCreatesChannelAndNotifies(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestService(db)
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	ctx := context.Background()

	req, err := svc.Create(ctx, user.ID, "Book Club", "weekly reads", "")
	require.NoError(t, err)

	channel, err := svc.Approve(ctx, req.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Book Club", channel.Name)

	stored, err := repository.NewChannelRequestRepository(db).GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, stored.Status)
	assert.Equal(t, "Channel created successfully", stored.AdminResponse)

	member, err := repository.NewChannelRepository(db).IsMember(ctx, user.ID, channel.ID)
	require.NoError(t, err)
	assert.True(t, member)

	var notif model.Notification
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&notif).Error)
	assert.Equal(t, model.NotificationChannelApproved, notif.Type)

	// Resolved requests cannot be approved twice.
	_, err = svc.Approve(ctx, req.ID, admin.ID)
	assert.ErrorIs(t, err, ErrRequestNotPending)
}

func TestApproveRejectsDuplicateChannelName(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestService(db)
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	seedChannel(t, db, "Book Club")
	ctx := context.Background()

	req, err := svc.Create(ctx, user.ID, "Book Club", "", "")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, req.ID, admin.ID)
	var invalid *ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestNeedsInfoThenResubmit(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestService(db)
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ctx := context.Background()

	req, err := svc.Create(ctx, user.ID, "Vague Club", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.NeedsInfo(ctx, req.ID, "What would members actually do?"))
	stored, err := repository.NewChannelRequestRepository(db).GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestNeedsInfo, stored.Status)

	updated, err := svc.Update(ctx, req.ID, user.ID, "Vague Club", "We meet and do things", "community")
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, updated.Status)
	assert.Empty(t, updated.AdminResponse)
}

func TestRejectNotifiesWithReason(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestService(db)
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ctx := context.Background()

	req, err := svc.Create(ctx, user.ID, "Spam Club", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Reject(ctx, req.ID, "too niche"))

	var notif model.Notification
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&notif).Error)
	assert.Equal(t, model.NotificationChannelRejected, notif.Type)
	assert.Contains(t, notif.Message, "too niche")
}

func TestCancelOnlyByOwner(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestService(db)
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	other := seedUser(t, db, "bob@example.com", model.RoleUser)
	ctx := context.Background()

	req, err := svc.Create(ctx, user.ID, "Book Club", "", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Cancel(ctx, req.ID, other.ID), ErrNotAllowed)
	assert.NoError(t, svc.Cancel(ctx, req.ID, user.ID))

	pending, err := svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
