package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore is the part of storage.RedisClient the limiter needs.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Get(ctx context.Context, key string) (string, error)
}

// FixedWindowLimiter counts requests per key in redis. The window of a key
// starts with its first request and ends when the key expires, so counters
// are shared by every instance and disappear on their own.
type FixedWindowLimiter struct {
	store  CounterStore
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewFixedWindow(store CounterStore, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func redisKey(key string) string {
	return fmt.Sprintf("ratelimit:fixed:%s", key)
}

func (f *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := redisKey(key)

	count, err := f.store.Incr(ctx, k)
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", k, err)
	}

	if count == 1 {
		if err := f.store.Expire(ctx, k, f.window); err != nil {
			return false, fmt.Errorf("expire %s: %w", k, err)
		}
	} else if ttl, err := f.store.TTL(ctx, k); err == nil && ttl == -1 {
		// An earlier EXPIRE was lost; without it the key would never reset.
		if err := f.store.Expire(ctx, k, f.window); err != nil {
			return false, fmt.Errorf("expire %s: %w", k, err)
		}
	}

	return count <= int64(f.limit), nil
}

func (f *FixedWindowLimiter) Remaining(ctx context.Context, key string) (int, error) {
	val, err := f.store.Get(ctx, redisKey(key))
	if errors.Is(err, redis.Nil) {
		return f.limit, nil
	}

	if err != nil {
		return 0, err
	}

	count, _ := strconv.Atoi(val)
	remaining := f.limit - count

	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

func (f *FixedWindowLimiter) Limit() int {
	return f.limit
}

func (f *FixedWindowLimiter) Window() time.Duration {
	return f.window
}

// Returns the time at which the window of key ends
func (f *FixedWindowLimiter) Reset(ctx context.Context, key string) (time.Time, error) {
	ttl, err := f.store.TTL(ctx, redisKey(key))
	if err != nil {
		return time.Time{}, err
	}
	if ttl < 0 {
		return f.now(), nil
	}
	return f.now().Add(ttl), nil
}
