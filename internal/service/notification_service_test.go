package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []any
}

func (b *recordingBroadcaster) Push(_ string, event any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func newRedisCache(t *testing.T) *UnreadCache {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewUnreadCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestNotifyPushesAndInvalidatesCache(t *testing.T) {
	db := newTestDB(t)
	cache := newRedisCache(t)
	broadcaster := &recordingBroadcaster{}
	svc := NewNotificationService(repository.NewNotificationRepository(db), cache, broadcaster)
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ctx := context.Background()

	count, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	require.NoError(t, svc.Notify(ctx, user.ID, model.NotificationWarning, "Warning 1", "watch it"))
	assert.Equal(t, 1, broadcaster.count())

	// The cached zero was invalidated by Notify.
	count, err = svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	notifs, err := svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)

	require.NoError(t, svc.MarkRead(ctx, user.ID, notifs[0].ID))
	count, err = svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestUnreadCountServedFromCache(t *testing.T) {
	db := newTestDB(t)
	cache := newRedisCache(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db), cache, nil)
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, user.ID, model.NotificationBan, "Account Banned", "24h"))

	count, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Poison the cache to prove the second read never reaches the database.
	cache.Set(ctx, user.ID, 42)
	count, err = svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 42, count)
}
