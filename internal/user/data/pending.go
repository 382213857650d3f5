package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/daffaabp/storage-management/internal/pkg/redis"
	"github.com/daffaabp/storage-management/internal/user/biz"
)

const pendingSignInKeyPrefix = "pending_signin:"

// RedisPendingSignInRepo stores sign-in codes in Redis with a TTL
type RedisPendingSignInRepo struct {
	client *redis.Client
}

// NewRedisPendingSignInRepo creates a Redis-backed pending sign-in repo
func NewRedisPendingSignInRepo(client *redis.Client) biz.PendingSignInRepo {
	return &RedisPendingSignInRepo{client: client}
}

func (r *RedisPendingSignInRepo) Create(ctx context.Context, pending *biz.PendingSignIn) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending sign-in: %w", err)
	}

	ttl := time.Until(pending.ExpiresAt)
	if ttl <= 0 {
		ttl = biz.PendingSignInTTL
	}

	return r.client.Set(ctx, pendingSignInKeyPrefix+pending.AccountID, data, ttl)
}

func (r *RedisPendingSignInRepo) Get(ctx context.Context, accountID string) (*biz.PendingSignIn, error) {
	data, err := r.client.Get(ctx, pendingSignInKeyPrefix+accountID)
	if err != nil {
		if redis.IsNil(err) {
			return nil, biz.ErrCodeExpired
		}
		return nil, fmt.Errorf("failed to get pending sign-in: %w", err)
	}

	var pending biz.PendingSignIn
	if err := json.Unmarshal([]byte(data), &pending); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending sign-in: %w", err)
	}

	return &pending, nil
}

func (r *RedisPendingSignInRepo) IncrementAttempts(ctx context.Context, accountID string) error {
	pending, err := r.Get(ctx, accountID)
	if err != nil {
		return err
	}

	pending.Attempts++

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending sign-in: %w", err)
	}

	// Preserve the original expiry rather than extending it.
	ttl := time.Until(pending.ExpiresAt)
	if ttl <= 0 {
		return biz.ErrCodeExpired
	}

	return r.client.Set(ctx, pendingSignInKeyPrefix+accountID, data, ttl)
}

func (r *RedisPendingSignInRepo) Delete(ctx context.Context, accountID string) error {
	return r.client.Del(ctx, pendingSignInKeyPrefix+accountID)
}
