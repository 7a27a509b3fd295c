package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/matchday-preview/internal/domain/workflow"
)

type DispatchRepository struct {
	mu     sync.RWMutex
	events map[string]workflow.DispatchEvent
}

func NewDispatchRepository() *DispatchRepository {
	return &DispatchRepository{events: make(map[string]workflow.DispatchEvent)}
}

func (r *DispatchRepository) UpsertEvent(_ context.Context, event workflow.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.events[event.DispatchID]; ok && event.Payload == nil {
		event.Payload = current.Payload
	}
	r.events[event.DispatchID] = event
	return nil
}

// Get returns the latest event for a dispatch.
func (r *DispatchRepository) Get(dispatchID string) (workflow.DispatchEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[dispatchID]
	return event, ok
}
