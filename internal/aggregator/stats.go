package aggregator

import (
	"context"
	"math"

	"walrus-backend/internal/models"
)

const noDataForPeriod = "No data available for this period"

// Statistics summarizes each numeric field over a history window.
// Fields are independent: a reading missing one field still counts toward the others.
func (e *Engine) Statistics(ctx context.Context, window, deviceID string) (*models.StatsSummary, error) {
	readings, err := e.History(ctx, window, deviceID)
	if err != nil {
		return nil, err
	}

	if len(readings) == 0 {
		return &models.StatsSummary{
			Count:    0,
			Duration: window,
			Message:  noDataForPeriod,
		}, nil
	}

	return &models.StatsSummary{
		Count:          len(readings),
		Duration:       window,
		BasinTemp:      summarize(collect(readings, func(r *models.Reading) *float64 { return r.BasinTemp })),
		CondenserTemp:  summarize(collect(readings, func(r *models.Reading) *float64 { return r.CondenserTemp })),
		TDSPPM:         summarize(collect(readings, tdsValue)),
		WaterLevelCM:   summarize(collect(readings, func(r *models.Reading) *float64 { return r.WaterLevelCM })),
		BatteryVoltage: summarize(collect(readings, func(r *models.Reading) *float64 { return r.BatteryVoltage })),
		SolarCurrent:   summarize(collect(readings, func(r *models.Reading) *float64 { return r.SolarCurrent })),
	}, nil
}

func tdsValue(r *models.Reading) *float64 {
	if r.TDSPPM == nil {
		return nil
	}
	return models.Float64(float64(*r.TDSPPM))
}

// collect gathers the non-null values of one field
func collect(readings []*models.Reading, field func(*models.Reading) *float64) []float64 {
	values := make([]float64, 0, len(readings))
	for _, r := range readings {
		if v := field(r); v != nil {
			values = append(values, *v)
		}
	}
	return values
}

// summarize returns avg (2 decimals, half-up), min and max; all nil for no values
func summarize(values []float64) *models.FieldStats {
	if len(values) == 0 {
		return &models.FieldStats{}
	}

	sum, lo, hi := 0.0, values[0], values[0]
	for _, v := range values {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	return &models.FieldStats{
		Avg: models.Float64(Round2(sum / float64(len(values)))),
		Min: models.Float64(lo),
		Max: models.Float64(hi),
	}
}

// Round2 rounds to two decimals, halves toward +Inf
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
