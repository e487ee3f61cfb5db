package aggregator

import (
	"context"
	"time"

	"walrus-backend/internal/models"
)

const (
	// OnlineThreshold is how recent the latest reading must be for a device to count as online
	OnlineThreshold = 600 * time.Second

	LowBatteryVoltage = 11.5
	HighTDSPPM        = 500

	noDataReceived = "No data received from device"
)

// Status judges liveness and warnings from the latest reading
func (e *Engine) Status(ctx context.Context, deviceID string) (*models.StatusJudgment, error) {
	latest, ok, err := e.Latest(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if !ok {
		return &models.StatusJudgment{
			Status:   models.StatusOffline,
			DeviceID: deviceID,
			Warnings: []string{},
			Message:  noDataReceived,
		}, nil
	}

	status := models.StatusOffline
	if e.now().Sub(latest.CreatedAt) < OnlineThreshold {
		status = models.StatusOnline
	}

	lastSeen := latest.CreatedAt
	return &models.StatusJudgment{
		Status:         status,
		LastSeen:       &lastSeen,
		DeviceID:       latest.DeviceID,
		SystemState:    latest.SystemState,
		BatteryVoltage: latest.BatteryVoltage,
		Warnings:       EvaluateWarnings(latest),
	}, nil
}

// EvaluateWarnings checks each warning condition on its own. Missing fields never warn.
func EvaluateWarnings(r *models.Reading) []string {
	warnings := []string{}
	if r.BatteryVoltage != nil && *r.BatteryVoltage < LowBatteryVoltage {
		warnings = append(warnings, models.WarningLowBattery)
	}
	if r.TDSPPM != nil && *r.TDSPPM > HighTDSPPM {
		warnings = append(warnings, models.WarningHighTDS)
	}
	return warnings
}
