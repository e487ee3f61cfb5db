package models

import (
	"fmt"
	"strings"
)

// SensorData holds the sensor block of a device submission
type SensorData struct {
	BasinTemp      *float64 `json:"basin_temp"`      // Celsius
	CondenserTemp  *float64 `json:"condenser_temp"`  // Celsius
	TDSPPM         *int     `json:"tds_ppm"`         // Total dissolved solids
	WaterLevelCM   *float64 `json:"water_level_cm"`  // Centimeters
	BatteryVoltage *float64 `json:"battery_voltage"` // Volts
	SolarCurrent   *float64 `json:"solar_current"`   // Amps
}

// ActuatorData holds the actuator block of a device submission
type ActuatorData struct {
	PumpActive *bool `json:"pump_active"`
	FanActive  *bool `json:"fan_active"`
}

// DevicePayload is the complete payload a device submits over HTTP or MQTT
type DevicePayload struct {
	DeviceID  string        `json:"device_id"`
	Sensors   SensorData    `json:"sensors"`
	Actuators *ActuatorData `json:"actuators,omitempty"`
	State     *string       `json:"state,omitempty"`     // Idle, Refilling, Distilling, Sleep, ...
	Timestamp *int64        `json:"timestamp,omitempty"` // Device clock, informational only
}

// Validate checks the fields the store cannot do without
func (p *DevicePayload) Validate() error {
	if strings.TrimSpace(p.DeviceID) == "" {
		return fmt.Errorf("%w: device_id is required", ErrInvalidArgument)
	}
	return nil
}

// ToReading flattens the payload into an unsaved Reading
func (p *DevicePayload) ToReading() *Reading {
	r := &Reading{
		DeviceID:       p.DeviceID,
		BasinTemp:      p.Sensors.BasinTemp,
		CondenserTemp:  p.Sensors.CondenserTemp,
		TDSPPM:         p.Sensors.TDSPPM,
		WaterLevelCM:   p.Sensors.WaterLevelCM,
		BatteryVoltage: p.Sensors.BatteryVoltage,
		SolarCurrent:   p.Sensors.SolarCurrent,
		SystemState:    p.State,
	}
	if p.Actuators != nil {
		r.PumpActive = p.Actuators.PumpActive
		r.FanActive = p.Actuators.FanActive
	}
	return r
}
