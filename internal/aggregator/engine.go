package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"walrus-backend/internal/database"
	"walrus-backend/internal/models"
)

// Engine derives latest, history, statistics and status views from the reading log.
// It keeps no state between calls, so calls may run concurrently with each other and with writers.
type Engine struct {
	store  database.TelemetryStore
	logger *zap.Logger
	now    func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the engine's notion of now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(store database.TelemetryStore, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Latest returns the newest reading, optionally for one device.
// ok is false when no reading exists; that is not an error.
func (e *Engine) Latest(ctx context.Context, deviceID string) (reading *models.Reading, ok bool, err error) {
	readings, err := e.store.Query(ctx, database.QueryFilter{
		DeviceID: deviceID,
		Order:    database.Descending,
		Limit:    1,
	})
	if err != nil {
		return nil, false, storageError(err)
	}
	if len(readings) == 0 {
		return nil, false, nil
	}
	return readings[0], true, nil
}

// History returns every reading with created_at >= now - window, ascending
func (e *Engine) History(ctx context.Context, window, deviceID string) ([]*models.Reading, error) {
	d, err := ParseWindow(window)
	if err != nil {
		return nil, err
	}

	since := e.now().Add(-d)
	readings, err := e.store.Query(ctx, database.QueryFilter{
		DeviceID: deviceID,
		Since:    &since,
		Order:    database.Ascending,
	})
	if err != nil {
		return nil, storageError(err)
	}

	// Window bound and ascending order hold whatever the backend does
	inWindow := readings[:0]
	for _, r := range readings {
		if !r.CreatedAt.Before(since) {
			inWindow = append(inWindow, r)
		}
	}
	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].CreatedAt.Before(inWindow[j].CreatedAt)
	})

	e.logger.Debug("History window loaded",
		zap.String("window", window),
		zap.String("device_id", deviceID),
		zap.Int("count", len(inWindow)))

	return inWindow, nil
}

// storageError makes sure store failures surface as ErrStorageUnavailable
func storageError(err error) error {
	if errors.Is(err, models.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
}
