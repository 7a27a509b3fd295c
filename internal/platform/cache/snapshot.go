package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Snapshot holds at most one computed value together with the time it was
// computed. A value is served while now-computedAt < ttl.
type Snapshot[T any] struct {
	mu         sync.RWMutex
	value      T
	computedAt time.Time
	filled     bool
	flight     singleflight.Group
	now        func() time.Time
}

func NewSnapshot[T any]() *Snapshot[T] {
	return &Snapshot[T]{now: time.Now}
}

// WithClock replaces the time source, used by tests.
func (s *Snapshot[T]) WithClock(now func() time.Time) *Snapshot[T] {
	if now != nil {
		s.now = now
	}
	return s
}

// GetOrCompute returns the cached value when it is still fresh, otherwise it
// runs compute, stores the result and returns it. The boolean reports a hit.
// Failed computations are not cached. Concurrent callers share one compute,
// which is detached from any single caller's cancellation; a caller whose ctx
// ends stops waiting without failing the others.
func (s *Snapshot[T]) GetOrCompute(ctx context.Context, ttl time.Duration, compute func(context.Context) (T, error)) (T, bool, error) {
	var zero T
	if compute == nil {
		return zero, false, fmt.Errorf("compute function is required")
	}

	if value, ok := s.fresh(ttl); ok {
		return value, true, nil
	}

	type result struct {
		value T
		hit   bool
	}
	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan("snapshot", func() (any, error) {
		if value, ok := s.fresh(ttl); ok {
			return result{value: value, hit: true}, nil
		}

		value, err := compute(shared)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.value = value
		s.computedAt = s.now()
		s.filled = true
		s.mu.Unlock()
		return result{value: value}, nil
	})

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, false, r.Err
		}
		res := r.Val.(result)
		return res.value, res.hit, nil
	}
}

// Invalidate drops the cached value.
func (s *Snapshot[T]) Invalidate() {
	var zero T
	s.mu.Lock()
	s.value = zero
	s.filled = false
	s.computedAt = time.Time{}
	s.mu.Unlock()
}

func (s *Snapshot[T]) fresh(ttl time.Duration) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.filled || ttl <= 0 {
		var zero T
		return zero, false
	}
	if s.now().Sub(s.computedAt) >= ttl {
		var zero T
		return zero, false
	}
	return s.value, true
}
