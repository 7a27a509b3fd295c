package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type item[V any] struct {
	value   V
	expires time.Time
}

// Store is a keyed TTL cache for one value type. Concurrent loads of the same
// key share one call. Purge bumps a generation so a load that started before
// the purge does not write its stale result back.
type Store[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	gen    uint64
	items  map[string]item[V]
	flight singleflight.Group
}

// NewStore returns a store whose entries live for ttl. A ttl <= 0 keeps
// entries until the next Purge.
func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{ttl: ttl, now: time.Now, items: map[string]item[V]{}}
}

func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[key]
	if ok && s.ttl > 0 && !s.now().Before(it.expires) {
		delete(s.items, key)
		ok = false
	}
	if !ok {
		var zero V
		return zero, false
	}
	return it.value, true
}

func (s *Store[V]) Put(key string, value V) {
	s.mu.Lock()
	s.put(key, value)
	s.mu.Unlock()
}

func (s *Store[V]) put(key string, value V) {
	s.items[key] = item[V]{value: value, expires: s.now().Add(s.ttl)}
}

// Load returns the cached value for key or calls load once for all waiting
// callers. Errors are returned to every waiter and never cached.
func (s *Store[V]) Load(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	out, err, _ := s.flight.Do(key, func() (any, error) {
		if v, ok := s.Get(key); ok {
			return v, nil
		}
		s.mu.Lock()
		gen := s.gen
		s.mu.Unlock()

		v, err := load(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.gen == gen {
			s.put(key, v)
		}
		s.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return out.(V), nil
}

// Purge drops every entry.
func (s *Store[V]) Purge() {
	s.mu.Lock()
	s.gen++
	clear(s.items)
	s.mu.Unlock()
}

func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
