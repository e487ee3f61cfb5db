package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"walrus-backend/internal/models"
)

// MemoryStore keeps the reading log in process. Slice position is insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	readings []*models.Reading
	now      func() time.Time
}

var _ TelemetryStore = (*MemoryStore)(nil)

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the clock used to stamp created_at
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Append(ctx context.Context, reading *models.Reading) (*models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := reading.Clone()
	stored.ID = newReadingID()

	s.mu.Lock()
	stored.CreatedAt = s.now().UTC()
	s.readings = append(s.readings, stored)
	s.mu.Unlock()

	return stored.Clone(), nil
}

func (s *MemoryStore) Query(ctx context.Context, filter QueryFilter) ([]*models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]*models.Reading, 0, len(s.readings))
	for _, r := range s.readings {
		if filter.DeviceID != "" && r.DeviceID != filter.DeviceID {
			continue
		}
		if filter.Since != nil && r.CreatedAt.Before(*filter.Since) {
			continue
		}
		matched = append(matched, r.Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	if filter.Order == Descending {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return matched, nil
}

// Len returns the number of stored readings
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
