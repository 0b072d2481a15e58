package stream

import (
	"context"
	"encoding/json"
	"sync"

	"swasthyaflow/internal/model"
	"swasthyaflow/pkg/logger"

	"go.uber.org/zap"
)

// EventType push event kind
type EventType string

const (
	EventData  EventType = "data"
	EventError EventType = "error"
)

// errorPayload is sent instead of a summary when the builder fails.
var errorPayload = []byte(`{"message":"analytics_error"}`)

// Event one serialized push message. Data is shared between subscribers and must not be mutated.
type Event struct {
	Type EventType
	Data []byte
}

// Builder computes the summary pushed to an owner's subscribers.
type Builder interface {
	BuildSummary(ctx context.Context, ownerID string) (*model.AnalyticsSummary, error)
}

// Registry in-memory map of owner id to open push subscribers.
// Not persisted; a restart drops every subscriber.
type Registry struct {
	mu      sync.RWMutex
	owners  map[string]map[*Subscriber]struct{}
	builder Builder
}

// NewRegistry creates an empty registry that builds summaries with builder.
func NewRegistry(builder Builder) *Registry {
	return &Registry{
		owners:  make(map[string]map[*Subscriber]struct{}),
		builder: builder,
	}
}

// Register adds sub to ownerID's set. Registering the same subscriber twice is a no-op.
func (r *Registry) Register(ownerID string, sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.owners[ownerID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		r.owners[ownerID] = set
	}
	set[sub] = struct{}{}
}

// Unregister removes sub. Once it returns no broadcast delivers to sub again.
func (r *Registry) Unregister(ownerID string, sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.owners[ownerID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(r.owners, ownerID)
	}
}

// Count returns the number of subscribers for ownerID.
func (r *Registry) Count(ownerID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners[ownerID])
}

// Total returns the number of subscribers across all owners.
func (r *Registry) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, set := range r.owners {
		total += len(set)
	}
	return total
}

// Owners returns the owners that currently have at least one subscriber.
func (r *Registry) Owners() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make([]string, 0, len(r.owners))
	for ownerID := range r.owners {
		owners = append(owners, ownerID)
	}
	return owners
}

// Broadcast builds one summary for ownerID and delivers it to every subscriber
// registered at delivery time. Does nothing when the owner has no subscribers.
// A builder failure is delivered as an error event.
func (r *Registry) Broadcast(ctx context.Context, ownerID string) {
	if r.Count(ownerID) == 0 {
		return
	}

	event := r.buildEvent(ctx, ownerID)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for sub := range r.owners[ownerID] {
		if !sub.deliver(event) {
			logger.Warn("subscriber queue full, dropping event",
				zap.String("subscriber", sub.ID()),
				zap.String("owner", ownerID),
				zap.String("type", string(event.Type)))
		}
	}
}

// BroadcastAll rebroadcasts to every owner with subscribers.
func (r *Registry) BroadcastAll(ctx context.Context) {
	for _, ownerID := range r.Owners() {
		if ctx.Err() != nil {
			return
		}
		r.Broadcast(ctx, ownerID)
	}
}

func (r *Registry) buildEvent(ctx context.Context, ownerID string) Event {
	summary, err := r.builder.BuildSummary(ctx, ownerID)
	if err != nil {
		logger.ErrorCtx(ctx, "failed to build analytics summary for owner %s: %v", ownerID, err)
		return Event{Type: EventError, Data: errorPayload}
	}

	data, err := json.Marshal(summary)
	if err != nil {
		logger.ErrorCtx(ctx, "failed to encode analytics summary for owner %s: %v", ownerID, err)
		return Event{Type: EventError, Data: errorPayload}
	}
	return Event{Type: EventData, Data: data}
}
