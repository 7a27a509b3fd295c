package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"golang.org/x/sync/singleflight"
)

// RedisSnapshot shares one computed value across API replicas. Redis expiry
// enforces the ttl. When Redis is unreachable the value is computed directly
// so the caller still gets fresh data.
type RedisSnapshot[T any] struct {
	client redis.UniversalClient
	key    string
	flight singleflight.Group
	logger *logging.Logger
}

func NewRedisSnapshot[T any](client redis.UniversalClient, key string, logger *logging.Logger) *RedisSnapshot[T] {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisSnapshot[T]{client: client, key: key, logger: logger}
}

func (s *RedisSnapshot[T]) GetOrCompute(ctx context.Context, ttl time.Duration, compute func(context.Context) (T, error)) (T, bool, error) {
	var zero T
	if compute == nil {
		return zero, false, fmt.Errorf("snapshot compute function is required")
	}

	if value, ok := s.read(ctx); ok {
		return value, true, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(s.key, func() (any, error) {
		value, err := compute(shared)
		if err != nil {
			return nil, err
		}
		s.write(shared, value, ttl)
		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, false, r.Err
		}
		value, _ := r.Val.(T)
		return value, false, nil
	}
}

func (s *RedisSnapshot[T]) Invalidate(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisSnapshot[T]) read(ctx context.Context) (T, bool) {
	var value T
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "read snapshot from redis failed", "key", s.key, "error", err)
		}
		return value, false
	}
	if err := sonic.Unmarshal(raw, &value); err != nil {
		s.logger.WarnContext(ctx, "decode snapshot from redis failed", "key", s.key, "error", err)
		return value, false
	}
	return value, true
}

func (s *RedisSnapshot[T]) write(ctx context.Context, value T, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	raw, err := sonic.Marshal(value)
	if err != nil {
		s.logger.WarnContext(ctx, "encode snapshot failed", "key", s.key, "error", err)
		return
	}
	if err := s.client.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "write snapshot to redis failed", "key", s.key, "error", err)
	}
}
