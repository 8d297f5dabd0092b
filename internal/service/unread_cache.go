package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const unreadCacheTTL = 5 * time.Minute

// UnreadCache keeps per-user unread-notification counts in redis so the
// badge poll does not hit the primary store on every request.
type UnreadCache struct {
	client *redis.Client
}

func NewUnreadCache(client *redis.Client) *UnreadCache {
	return &UnreadCache{client: client}
}

func unreadKey(userID string) string { return fmt.Sprintf("notif:unread:%s", userID) }

func (c *UnreadCache) Get(ctx context.Context, userID string) (int64, bool) {
	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (c *UnreadCache) Set(ctx context.Context, userID string, count int64) {
	_ = c.client.Set(ctx, unreadKey(userID), count, unreadCacheTTL).Err()
}

func (c *UnreadCache) Invalidate(ctx context.Context, userID string) {
	_ = c.client.Del(ctx, unreadKey(userID)).Err()
}
