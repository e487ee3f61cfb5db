package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"walrus-backend/internal/models"
)

// Subscriber handles MQTT subscriptions and writes device payloads to a channel
type Subscriber struct {
	client mqtt.Client
	logger *zap.Logger

	// Output channel (written by subscriber, read by the ingest service)
	PayloadChan chan *models.DevicePayload

	telemetryTopic string
	sendTimeout    time.Duration
}

// SubscriberConfig holds configuration for MQTT subscriber
type SubscriberConfig struct {
	TelemetryTopic string // e.g., "walrus/+/telemetry"
}

func NewSubscriber(
	client mqtt.Client,
	config SubscriberConfig,
	payloadChan chan *models.DevicePayload,
	logger *zap.Logger,
) *Subscriber {
	return &Subscriber{
		client:         client,
		logger:         logger,
		PayloadChan:    payloadChan,
		telemetryTopic: config.TelemetryTopic,
		sendTimeout:    time.Second,
	}
}

// SubscribeAll subscribes to all configured topics
func (s *Subscriber) SubscribeAll() error {
	if s.telemetryTopic == "" {
		return nil
	}

	token := s.client.Subscribe(s.telemetryTopic, 1, s.handleTelemetry)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to telemetry topic: %w", token.Error())
	}

	s.logger.Info("Subscribed to telemetry topic", zap.String("topic", s.telemetryTopic))
	return nil
}

// handleTelemetry decodes a DevicePayload and writes it to the channel
func (s *Subscriber) handleTelemetry(_ mqtt.Client, msg mqtt.Message) {
	var payload models.DevicePayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		s.logger.Warn("Error unmarshaling telemetry",
			zap.String("topic", msg.Topic()),
			zap.Error(err))
		return
	}

	// Topic wins only when the payload is silent
	if payload.DeviceID == "" {
		payload.DeviceID = extractDeviceID(msg.Topic())
	}
	if payload.DeviceID == "" {
		s.logger.Warn("Could not determine device ID", zap.String("topic", msg.Topic()))
		return
	}

	select {
	case s.PayloadChan <- &payload:
		s.logger.Debug("Received telemetry", zap.String("device_id", payload.DeviceID))
	case <-time.After(s.sendTimeout):
		s.logger.Warn("Payload channel full, dropping message", zap.String("device_id", payload.DeviceID))
	}
}

// extractDeviceID extracts device ID from MQTT topic
// Example: "walrus/WALRUS_001/telemetry" -> "WALRUS_001"
func extractDeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}
