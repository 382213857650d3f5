package data

import (
	"context"

	"github.com/daffaabp/storage-management/internal/pkg/redis"
)

// FilesChangedChannel is the pub/sub channel prefix listing views
// subscribe to for invalidation signals
const FilesChangedChannel = "files:changed:"

// RedisNotifier implements biz.Notifier over Redis pub/sub
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a Redis-backed change notifier
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// FilesChanged publishes an invalidation signal for an account
func (n *RedisNotifier) FilesChanged(ctx context.Context, accountID string) error {
	return n.client.Publish(ctx, FilesChangedChannel+accountID, "changed")
}
