package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"walrus-backend/internal/database"
	"walrus-backend/internal/models"
)

const (
	DefaultDeviceID = "WALRUS_SIM"

	MinIntervalSeconds = 1
	MaxIntervalSeconds = 300
)

// Engine runs the simulated device: one background loop that steps a State
// and appends a reading per tick.
type Engine struct {
	store    database.TelemetryStore
	logger   *zap.Logger
	deviceID string
	tickUnit time.Duration
	newRand  func() *rand.Rand

	interval atomic.Int64 // in tick units
	tick     atomic.Int64

	// Lifecycle only; the State itself is never shared
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures an Engine
type Option func(*Engine)

func WithDeviceID(deviceID string) Option {
	return func(e *Engine) {
		e.deviceID = deviceID
	}
}

// WithInterval sets the initial interval, clamped like SetInterval
func WithInterval(seconds int) Option {
	return func(e *Engine) {
		e.interval.Store(int64(clampInterval(seconds)))
	}
}

// WithSeed makes every run draw from the same random sequence
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.newRand = func() *rand.Rand { return rand.New(rand.NewSource(seed)) }
	}
}

// WithTickUnit scales the interval; the default unit is one second
func WithTickUnit(unit time.Duration) Option {
	return func(e *Engine) {
		e.tickUnit = unit
	}
}

func NewEngine(store database.TelemetryStore, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		logger:   logger,
		deviceID: DefaultDeviceID,
		tickUnit: time.Second,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
	e.interval.Store(MinIntervalSeconds)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the tick loop with a fresh state. It returns false if already running.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cancel, e.done = cancel, done
	e.tick.Store(0)

	go e.run(ctx, done, NewState(), e.newRand())

	e.logger.Info("Simulation started",
		zap.String("device_id", e.deviceID),
		zap.Int64("interval_seconds", e.interval.Load()))
	return true
}

// Stop cancels the loop and waits for it to exit, so no reading is written
// after Stop returns. It returns false if the engine was not running.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel == nil {
		return false
	}

	e.cancel()
	<-e.done
	e.cancel, e.done = nil, nil

	e.logger.Info("Simulation stopped", zap.Int64("tick", e.tick.Load()))
	return true
}

// SetInterval clamps seconds into [1,300] and returns the applied value.
// The loop picks it up when it schedules its next wait.
func (e *Engine) SetInterval(seconds int) int {
	applied := clampInterval(seconds)
	e.interval.Store(int64(applied))

	e.logger.Info("Simulation interval updated",
		zap.Int("requested", seconds),
		zap.Int("applied", applied))
	return applied
}

// Status reports the control-plane view of the simulator
func (e *Engine) Status() models.SimulationStatus {
	e.mu.Lock()
	running := e.cancel != nil
	e.mu.Unlock()

	return models.SimulationStatus{
		Running:         running,
		IntervalSeconds: int(e.interval.Load()),
		DeviceID:        e.deviceID,
		Tick:            e.tick.Load(),
	}
}

// IsRunning reports whether the tick loop is active
func (e *Engine) IsRunning() bool {
	return e.Status().Running
}

func (e *Engine) run(ctx context.Context, done chan struct{}, state *State, rng *rand.Rand) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}

		e.tickOnce(ctx, state, rng)

		timer := time.NewTimer(time.Duration(e.interval.Load()) * e.tickUnit)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// tickOnce steps the state and persists the reading. A failed write is
// logged and dropped; the loop keeps its schedule.
func (e *Engine) tickOnce(ctx context.Context, state *State, rng *rand.Rand) {
	state.Step(rng)
	e.tick.Store(state.Tick)

	stored, err := e.store.Append(ctx, state.Reading(e.deviceID))
	if err != nil {
		e.logger.Warn("Error inserting simulated reading",
			zap.Int64("tick", state.Tick),
			zap.Error(fmt.Errorf("%w: %w", models.ErrTickFailure, err)))
		return
	}

	e.logger.Debug("Simulated reading stored",
		zap.String("id", stored.ID),
		zap.Int64("tick", state.Tick),
		zap.String("system_state", state.SystemState))
}

func clampInterval(seconds int) int {
	if seconds < MinIntervalSeconds {
		return MinIntervalSeconds
	}
	if seconds > MaxIntervalSeconds {
		return MaxIntervalSeconds
	}
	return seconds
}
