package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"swasthyaflow/pkg/apperrors"
	"swasthyaflow/pkg/store/mysql"

	"github.com/stretchr/testify/assert"
)

// fakeScheduleRepo in-memory scheduleRepository
type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]*mysql.Schedule
	now       func() time.Time
	findErr   error
	createErr error
	finds     int
	creates   int
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		schedules: make(map[string]*mysql.Schedule),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *fakeScheduleRepo) put(s *mysql.Schedule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.schedules[s.ID] = &cp
}

func (r *fakeScheduleRepo) Create(ctx context.Context, s *mysql.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	now := r.now()
	s.CreatedAt, s.UpdatedAt = now, now
	cp := *s
	r.schedules[s.ID] = &cp
	return nil
}

func (r *fakeScheduleRepo) Get(ctx context.Context, userID, id string) (*mysql.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// matchesFilter mirrors the repository's WHERE clause
func matchesFilter(f mysql.ScheduleFilter, s *mysql.Schedule) bool {
	if s == nil || s.UserID != f.UserID {
		return false
	}
	if f.StartFrom != nil && s.StartTime.Before(*f.StartFrom) {
		return false
	}
	if f.StartTo != nil && !s.StartTime.Before(*f.StartTo) {
		return false
	}
	if f.UpdatedSince != nil && s.UpdatedAt.Before(*f.UpdatedSince) {
		return false
	}
	return true
}

func (r *fakeScheduleRepo) Find(ctx context.Context, filter mysql.ScheduleFilter) ([]*mysql.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.findErr != nil {
		return nil, r.findErr
	}

	out := make([]*mysql.Schedule, 0)
	for _, s := range r.schedules {
		if matchesFilter(filter, s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	switch filter.Order {
	case mysql.OrderStartTimeAsc:
		sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	case mysql.OrderUpdatedAtDesc:
		sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeScheduleRepo) UpdateStatus(ctx context.Context, userID, id, fromStatus, toStatus string) (*mysql.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok || s.UserID != userID {
		return nil, fmt.Errorf("schedule %s: %w", id, apperrors.ErrNotFound)
	}
	if s.Status != fromStatus {
		return nil, fmt.Errorf("schedule %s is %s: %w", id, s.Status, apperrors.ErrConflict)
	}
	s.Status = toStatus
	s.UpdatedAt = r.now()
	cp := *s
	return &cp, nil
}

// fakeIdempotencyStore in-memory idempotencyStore
type fakeIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]string
}

const fakePending = "pending"

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{entries: make(map[string]string)}
}

func (f *fakeIdempotencyStore) Reserve(ctx context.Context, ownerID, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := ownerID + ":" + key
	v, ok := f.entries[k]
	if !ok {
		f.entries[k] = fakePending
		return "", true, nil
	}
	if v == fakePending {
		return "", false, nil
	}
	return v, false, nil
}

func (f *fakeIdempotencyStore) Complete(ctx context.Context, ownerID, key, scheduleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[ownerID+":"+key] = scheduleID
	return nil
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, ownerID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := ownerID + ":" + key
	if f.entries[k] == fakePending {
		delete(f.entries, k)
	}
	return nil
}

// fakeBroadcaster records broadcasts; block delays them until released
type fakeBroadcaster struct {
	mu     sync.Mutex
	owners []string
	block  chan struct{}
	panics bool
}

func (b *fakeBroadcaster) Broadcast(ctx context.Context, ownerID string) {
	if b.block != nil {
		<-b.block
	}
	if b.panics {
		panic("boom")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.owners = append(b.owners, ownerID)
}

func (b *fakeBroadcaster) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.owners...)
}

func TestMatchesFilterBounds(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	nine, ten, eleven, next := day.Add(9*time.Hour), day.Add(10*time.Hour), day.Add(11*time.Hour), day.Add(24*time.Hour)
	s := &mysql.Schedule{UserID: "u1", StartTime: nine, UpdatedAt: ten}

	tests := []struct {
		name   string
		filter mysql.ScheduleFilter
		want   bool
	}{
		{"owner only", mysql.ScheduleFilter{UserID: "u1"}, true},
		{"other owner", mysql.ScheduleFilter{UserID: "u2"}, false},
		{"inside range", mysql.ScheduleFilter{UserID: "u1", StartFrom: &day, StartTo: &next}, true},
		{"range end is exclusive", mysql.ScheduleFilter{UserID: "u1", StartTo: &nine}, false},
		{"range start is inclusive", mysql.ScheduleFilter{UserID: "u1", StartFrom: &nine}, true},
		{"updated since after", mysql.ScheduleFilter{UserID: "u1", UpdatedSince: &eleven}, false},
		{"updated since equal", mysql.ScheduleFilter{UserID: "u1", UpdatedSince: &ten}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesFilter(tt.filter, s))
		})
	}
}
