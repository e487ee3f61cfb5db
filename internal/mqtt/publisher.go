package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"walrus-backend/internal/models"
)

// Publisher publishes alerts read from channels
type Publisher struct {
	client mqtt.Client
	logger *zap.Logger

	alertTopic string // e.g., "walrus/{device_id}/alerts"
}

// PublisherConfig holds configuration for MQTT publisher
type PublisherConfig struct {
	AlertTopic string
}

func NewPublisher(client mqtt.Client, config PublisherConfig, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:     client,
		logger:     logger,
		alertTopic: config.AlertTopic,
	}
}

// Start publishes alerts from the channel until the context is cancelled
// or the channel is closed. It may run once per alert source.
func (p *Publisher) Start(ctx context.Context, alerts <-chan *models.Alert) {
	for {
		select {
		case <-ctx.Done():
			return

		case alert, ok := <-alerts:
			if !ok {
				p.logger.Info("Alert channel closed, publisher exiting")
				return
			}

			if err := p.PublishAlert(alert); err != nil {
				p.logger.Warn("Error publishing alert", zap.Error(err))
			}
		}
	}
}

// PublishAlert publishes one alert to the device's alert topic
func (p *Publisher) PublishAlert(alert *models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	topic := formatTopic(p.alertTopic, alert.DeviceID)

	token := p.client.Publish(topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish alert: %w", token.Error())
	}

	p.logger.Info("Published alert",
		zap.String("device_id", alert.DeviceID),
		zap.String("topic", topic),
		zap.Strings("warnings", alert.Warnings))
	return nil
}

// formatTopic replaces {device_id} placeholder with actual device ID
func formatTopic(topicPattern, deviceID string) string {
	return strings.ReplaceAll(topicPattern, "{device_id}", deviceID)
}
