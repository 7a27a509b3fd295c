package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUserRepository(users []user.User) *UserRepository {
	items := make(map[string]user.User, len(users))
	for _, item := range users {
		items[item.ID] = item
	}
	return &UserRepository{items: items}
}

func (r *UserRepository) List(_ context.Context, filter user.Filter) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return paginate(r.filtered(filter), filter.Limit, filter.Offset), nil
}

func (r *UserRepository) Count(_ context.Context, filter user.Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.filtered(filter)), nil
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[userID]
	return item, ok, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if strings.EqualFold(item.Username, username) {
			return item, true, nil
		}
	}
	return user.User{}, false, nil
}

func (r *UserRepository) Create(_ context.Context, item user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("user %s already exists", item.ID)
	}
	r.items[item.ID] = item
	return nil
}

func (r *UserRepository) Update(_ context.Context, item user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.items[item.ID]
	if !exists {
		return fmt.Errorf("user %s not found", item.ID)
	}
	item.Tasks = current.Tasks
	r.items[item.ID] = item
	return nil
}

func (r *UserRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, userID)
	return nil
}

func (r *UserRepository) IncrementTasks(_ context.Context, userID string, triggered, completed int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[userID]
	if !exists {
		return fmt.Errorf("user %s not found", userID)
	}
	item.Tasks.Triggered += triggered
	item.Tasks.Completed += completed
	r.items[userID] = item
	return nil
}

func (r *UserRepository) TouchLogin(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[userID]
	if !exists {
		return fmt.Errorf("user %s not found", userID)
	}
	item.LastLoginAt = &at
	r.items[userID] = item
	return nil
}

func (r *UserRepository) filtered(filter user.Filter) []user.User {
	out := make([]user.User, 0, len(r.items))
	for _, item := range r.items {
		if filter.Role != "" && item.Role != filter.Role {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(item.Username, filter.Search) && !containsFold(item.FullName, filter.Search) && !containsFold(item.Email, filter.Search) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
