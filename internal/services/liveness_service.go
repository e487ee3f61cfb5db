package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"walrus-backend/internal/models"
)

const (
	AlertDeviceOffline = "device offline"
	AlertDeviceOnline  = "device online"
)

// StatusSource computes the liveness judgment for a device
type StatusSource interface {
	Status(ctx context.Context, deviceID string) (*models.StatusJudgment, error)
}

// LivenessMonitor polls the status of every device seen by ingest and
// reports online/offline transitions. It reads the store only, so a
// restart forgets the previous judgments and re-learns them on the first poll.
type LivenessMonitor struct {
	source StatusSource
	logger *zap.Logger

	pollingInterval time.Duration
	sendTimeout     time.Duration

	// Output channel for transition alerts
	AlertChan chan *models.Alert

	mu             sync.RWMutex
	trackedDevices map[string]string // device id -> last judged status, "" before the first poll
}

// LivenessMonitorConfig holds configuration for the liveness monitor
type LivenessMonitorConfig struct {
	PollingIntervalSeconds int
	ChannelSize            int
	SendTimeout            time.Duration
}

// DefaultLivenessMonitorConfig returns default configuration
func DefaultLivenessMonitorConfig() LivenessMonitorConfig {
	return LivenessMonitorConfig{
		PollingIntervalSeconds: 60,
		ChannelSize:            50,
		SendTimeout:            time.Second,
	}
}

func NewLivenessMonitor(source StatusSource, logger *zap.Logger, config LivenessMonitorConfig) *LivenessMonitor {
	defaults := DefaultLivenessMonitorConfig()
	if config.PollingIntervalSeconds <= 0 {
		logger.Warn("Invalid liveness polling interval, using default",
			zap.Int("configured_seconds", config.PollingIntervalSeconds),
			zap.Int("default_seconds", defaults.PollingIntervalSeconds))
		config.PollingIntervalSeconds = defaults.PollingIntervalSeconds
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = defaults.SendTimeout
	}
	if config.ChannelSize < 0 {
		config.ChannelSize = defaults.ChannelSize
	}

	return &LivenessMonitor{
		source:          source,
		logger:          logger,
		pollingInterval: time.Duration(config.PollingIntervalSeconds) * time.Second,
		sendTimeout:     config.SendTimeout,
		AlertChan:       make(chan *models.Alert, config.ChannelSize),
		trackedDevices:  make(map[string]string),
	}
}

// Start runs the polling loop until the context is cancelled
func (m *LivenessMonitor) Start(ctx context.Context) {
	m.logger.Info("Liveness monitor starting", zap.Duration("polling_interval", m.pollingInterval))

	ticker := time.NewTicker(m.pollingInterval)
	defer ticker.Stop()

	m.PollAll(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Liveness monitor shutting down")
			return
		case <-ticker.C:
			m.PollAll(ctx)
		}
	}
}

// PollAll judges every tracked device once
func (m *LivenessMonitor) PollAll(ctx context.Context) {
	devices := m.TrackedDevices()
	if len(devices) == 0 {
		return
	}

	m.logger.Debug("Polling devices", zap.Int("count", len(devices)))

	for _, deviceID := range devices {
		if ctx.Err() != nil {
			return
		}
		m.checkDevice(ctx, deviceID)
	}
}

func (m *LivenessMonitor) checkDevice(ctx context.Context, deviceID string) {
	judgment, err := m.source.Status(ctx, deviceID)
	if err != nil {
		m.logger.Warn("Error computing device status", zap.String("device_id", deviceID), zap.Error(err))
		return
	}

	m.mu.Lock()
	previous := m.trackedDevices[deviceID]
	m.trackedDevices[deviceID] = judgment.Status
	m.mu.Unlock()

	if previous == "" || previous == judgment.Status {
		return
	}

	m.logger.Info("Device status changed",
		zap.String("device_id", deviceID),
		zap.String("from", previous),
		zap.String("to", judgment.Status))

	message := AlertDeviceOnline
	if judgment.Status == models.StatusOffline {
		message = AlertDeviceOffline
	}

	alert := &models.Alert{
		DeviceID:  deviceID,
		CreatedAt: time.Now().UTC(),
		Warnings:  []string{message},
	}

	select {
	case m.AlertChan <- alert:
	case <-time.After(m.sendTimeout):
		m.logger.Warn("Alert channel full, dropping status change", zap.String("device_id", deviceID))
	}
}

// RegisterDevice adds a device to the tracking list
func (m *LivenessMonitor) RegisterDevice(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trackedDevices[deviceID]; !ok {
		m.trackedDevices[deviceID] = ""
		m.logger.Info("Now tracking device", zap.String("device_id", deviceID))
	}
}

// TrackedDevices returns all tracked device IDs in sorted order
func (m *LivenessMonitor) TrackedDevices() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	devices := make([]string, 0, len(m.trackedDevices))
	for deviceID := range m.trackedDevices {
		devices = append(devices, deviceID)
	}
	sort.Strings(devices)
	return devices
}
