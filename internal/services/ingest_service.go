package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"walrus-backend/internal/aggregator"
	"walrus-backend/internal/database"
	"walrus-backend/internal/models"
)

// DeviceTracker is told about every device that submits a reading
type DeviceTracker interface {
	RegisterDevice(deviceID string)
}

// IngestService validates and persists device submissions from HTTP and MQTT
type IngestService struct {
	store   database.TelemetryStore
	tracker DeviceTracker
	logger  *zap.Logger

	// Input channel from the MQTT subscriber
	PayloadChan chan *models.DevicePayload

	// Output channel to the MQTT publisher, nil when alerting is off
	AlertChan chan *models.Alert

	sendTimeout time.Duration
}

// IngestServiceConfig holds configuration for the ingest service
type IngestServiceConfig struct {
	PayloadChannelSize int
	AlertChannelSize   int // 0 disables alerts
	SendTimeout        time.Duration
}

// DefaultIngestServiceConfig returns default configuration
func DefaultIngestServiceConfig() IngestServiceConfig {
	return IngestServiceConfig{
		PayloadChannelSize: 100,
		AlertChannelSize:   50,
		SendTimeout:        time.Second,
	}
}

// NewIngestService creates a new ingest service. tracker may be nil.
func NewIngestService(
	store database.TelemetryStore,
	tracker DeviceTracker,
	logger *zap.Logger,
	config IngestServiceConfig,
) *IngestService {
	s := &IngestService{
		store:       store,
		tracker:     tracker,
		logger:      logger,
		PayloadChan: make(chan *models.DevicePayload, config.PayloadChannelSize),
		sendTimeout: config.SendTimeout,
	}
	if config.AlertChannelSize > 0 {
		s.AlertChan = make(chan *models.Alert, config.AlertChannelSize)
	}
	return s
}

// Submit stores one device submission and returns the stored reading
func (s *IngestService) Submit(ctx context.Context, payload *models.DevicePayload) (*models.Reading, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: empty payload", models.ErrInvalidArgument)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.store.Append(ctx, payload.ToReading())
	if err != nil {
		return nil, fmt.Errorf("failed to store reading for %s: %w", payload.DeviceID, err)
	}

	s.logger.Info("Stored reading",
		zap.String("device_id", stored.DeviceID),
		zap.String("id", stored.ID))

	if s.tracker != nil {
		s.tracker.RegisterDevice(stored.DeviceID)
	}

	if warnings := aggregator.EvaluateWarnings(stored); len(warnings) > 0 {
		s.emitAlert(&models.Alert{
			DeviceID:  stored.DeviceID,
			CreatedAt: stored.CreatedAt,
			Warnings:  warnings,
		})
	}

	return stored, nil
}

// Start drains the payload channel until the context is cancelled
func (s *IngestService) Start(ctx context.Context) {
	s.logger.Info("Ingest service starting")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Ingest service shutting down")
			return
		case payload, ok := <-s.PayloadChan:
			if !ok {
				return
			}
			if _, err := s.Submit(ctx, payload); err != nil {
				s.logger.Warn("Dropping device payload", zap.Error(err))
			}
		}
	}
}

func (s *IngestService) emitAlert(alert *models.Alert) {
	if s.AlertChan == nil {
		s.logger.Debug("Alerting disabled, not sending",
			zap.String("device_id", alert.DeviceID),
			zap.Strings("warnings", alert.Warnings))
		return
	}

	select {
	case s.AlertChan <- alert:
		s.logger.Info("Alert queued",
			zap.String("device_id", alert.DeviceID),
			zap.Strings("warnings", alert.Warnings))
	case <-time.After(s.sendTimeout):
		s.logger.Warn("Alert channel full, dropping alert", zap.String("device_id", alert.DeviceID))
	}
}
