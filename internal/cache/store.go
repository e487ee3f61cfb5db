package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"walrus-backend/internal/database"
	"walrus-backend/internal/models"
)

const latestKeyPrefix = "walrus:latest:"

// Store decorates a TelemetryStore with a per-device latest-reading cache.
// The inner store stays authoritative: cache errors only cost a round trip.
type Store struct {
	database.TelemetryStore

	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
}

var _ database.TelemetryStore = (*Store)(nil)

func NewStore(inner database.TelemetryStore, kv KVStore, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		TelemetryStore: inner,
		kv:             kv,
		ttl:            ttl,
		logger:         logger,
	}
}

// Append writes through to the inner store, then refreshes the device's cache entry
func (s *Store) Append(ctx context.Context, reading *models.Reading) (*models.Reading, error) {
	stored, err := s.TelemetryStore.Append(ctx, reading)
	if err != nil {
		return nil, err
	}
	s.put(ctx, stored)
	return stored, nil
}

// Query serves "latest reading of one device" from the cache, everything else from the inner store
func (s *Store) Query(ctx context.Context, filter database.QueryFilter) ([]*models.Reading, error) {
	if !isLatestLookup(filter) {
		return s.TelemetryStore.Query(ctx, filter)
	}

	cached, err := s.get(ctx, filter.DeviceID)
	if err == nil {
		return []*models.Reading{cached}, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("Latest cache read failed", zap.String("device_id", filter.DeviceID), zap.Error(err))
	}

	readings, err := s.TelemetryStore.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(readings) > 0 {
		s.put(ctx, readings[0])
	}
	return readings, nil
}

func isLatestLookup(f database.QueryFilter) bool {
	return f.DeviceID != "" && f.Since == nil && f.Order == database.Descending && f.Limit == 1
}

func (s *Store) get(ctx context.Context, deviceID string) (*models.Reading, error) {
	raw, err := s.kv.Get(ctx, latestKeyPrefix+deviceID)
	if err != nil {
		return nil, err
	}
	var r models.Reading
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// put stores r unless the cache already holds a newer reading for the device
func (s *Store) put(ctx context.Context, r *models.Reading) {
	data, err := json.Marshal(r)
	if err != nil {
		s.logger.Warn("Failed to encode reading for cache", zap.Error(err))
		return
	}
	if _, err := s.kv.SetIfNewer(ctx, latestKeyPrefix+r.DeviceID, version(r), string(data), s.ttl); err != nil {
		s.logger.Warn("Latest cache write failed", zap.String("device_id", r.DeviceID), zap.Error(err))
	}
}

// version orders readings by (created_at, id), matching the stores.
// The timestamp is zero-padded so byte order equals time order.
func version(r *models.Reading) string {
	return fmt.Sprintf("%020d:%s", r.CreatedAt.UnixNano(), r.ID)
}
