package models

import "time"

const (
	StatusOnline  = "online"
	StatusOffline = "offline"

	WarningLowBattery = "low battery"
	WarningHighTDS    = "high TDS"
)

// StatusJudgment is the derived liveness and warning view of a device.
// It is recomputed on every request and never stored.
type StatusJudgment struct {
	Status         string     `json:"status"`
	LastSeen       *time.Time `json:"last_seen"`
	DeviceID       string     `json:"device_id,omitempty"`
	SystemState    *string    `json:"system_state,omitempty"`
	BatteryVoltage *float64   `json:"battery_voltage,omitempty"`
	Warnings       []string   `json:"warnings"`
	Message        string     `json:"message,omitempty"`
}

// FieldStats summarizes one numeric field over a window.
// All members are nil when the window holds no value for the field.
type FieldStats struct {
	Avg *float64 `json:"avg"`
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// StatsSummary is the per-field summary of a history window
type StatsSummary struct {
	Count    int    `json:"count"`
	Duration string `json:"duration"`
	Message  string `json:"message,omitempty"`

	BasinTemp      *FieldStats `json:"basin_temp,omitempty"`
	CondenserTemp  *FieldStats `json:"condenser_temp,omitempty"`
	TDSPPM         *FieldStats `json:"tds_ppm,omitempty"`
	WaterLevelCM   *FieldStats `json:"water_level_cm,omitempty"`
	BatteryVoltage *FieldStats `json:"battery_voltage,omitempty"`
	SolarCurrent   *FieldStats `json:"solar_current,omitempty"`
}

// HasData reports whether the window contained any reading
func (s *StatsSummary) HasData() bool {
	return s != nil && s.Count > 0
}

// Alert is published when a device needs attention
type Alert struct {
	DeviceID  string    `json:"device_id"`
	CreatedAt time.Time `json:"created_at"`
	Warnings  []string  `json:"warnings"`
}

// SimulationStatus describes the simulator control plane
type SimulationStatus struct {
	Running         bool   `json:"running"`
	IntervalSeconds int    `json:"interval_seconds"`
	DeviceID        string `json:"device_id"`
	Tick            int64  `json:"tick"`
}
