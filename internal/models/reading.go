package models

import "time"

// Reading is a single persisted telemetry sample.
// ID and CreatedAt are assigned by the store; a Reading is never modified after that.
type Reading struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	DeviceID  string    `json:"device_id"`

	BasinTemp      *float64 `json:"basin_temp"`
	CondenserTemp  *float64 `json:"condenser_temp"`
	TDSPPM         *int     `json:"tds_ppm"`
	WaterLevelCM   *float64 `json:"water_level_cm"`
	BatteryVoltage *float64 `json:"battery_voltage"`
	SolarCurrent   *float64 `json:"solar_current"`

	PumpActive  *bool   `json:"pump_active"`
	FanActive   *bool   `json:"fan_active"`
	SystemState *string `json:"system_state"`
}

// Clone returns a shallow copy. Pointer fields are shared, which is safe
// because readings are immutable.
func (r *Reading) Clone() *Reading {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }
