package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"walrus-backend/internal/models"
)

func TestStatistics_EmptyWindow(t *testing.T) {
	c, store, engine := setupEngine()
	appendAt(t, c, store, t0, &models.Reading{DeviceID: "A", BasinTemp: models.Float64(50)})
	c.now = t0.Add(2 * time.Hour)

	stats, err := engine.Statistics(context.Background(), "1h", "")
	require.NoError(t, err)
	assert.False(t, stats.HasData())
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, "1h", stats.Duration)
	assert.Equal(t, noDataForPeriod, stats.Message)
	assert.Nil(t, stats.BasinTemp)
	assert.Nil(t, stats.TDSPPM)
}

func TestStatistics_AverageMinMax(t *testing.T) {
	c, store, engine := setupEngine()
	for i, v := range []float64{48.2, 51.5, 55.3} {
		appendAt(t, c, store, t0.Add(time.Duration(i)*time.Minute), &models.Reading{
			DeviceID:  "A",
			BasinTemp: models.Float64(v),
		})
	}

	stats, err := engine.Statistics(context.Background(), "24h", "A")
	require.NoError(t, err)
	require.True(t, stats.HasData())
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 51.67, *stats.BasinTemp.Avg)
	assert.Equal(t, 48.2, *stats.BasinTemp.Min)
	assert.Equal(t, 55.3, *stats.BasinTemp.Max)
}

func TestStatistics_FieldsAreIndependent(t *testing.T) {
	c, store, engine := setupEngine()
	appendAt(t, c, store, t0, &models.Reading{DeviceID: "A", BasinTemp: models.Float64(50)})
	appendAt(t, c, store, t0.Add(time.Second), &models.Reading{DeviceID: "A", TDSPPM: models.Int(230)})
	appendAt(t, c, store, t0.Add(2*time.Second), &models.Reading{DeviceID: "A", TDSPPM: models.Int(281)})

	stats, err := engine.Statistics(context.Background(), "1h", "")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Count)

	assert.Equal(t, 50.0, *stats.BasinTemp.Avg)
	assert.Equal(t, 255.5, *stats.TDSPPM.Avg)
	assert.Equal(t, 230.0, *stats.TDSPPM.Min)
	assert.Equal(t, 281.0, *stats.TDSPPM.Max)

	// No values at all: present but entirely unknown, not zero
	require.NotNil(t, stats.SolarCurrent)
	assert.Nil(t, stats.SolarCurrent.Avg)
	assert.Nil(t, stats.SolarCurrent.Min)
	assert.Nil(t, stats.SolarCurrent.Max)
}

func TestStatistics_CountMatchesHistory(t *testing.T) {
	c, store, engine := setupEngine()
	now := t0.Add(40 * 24 * time.Hour)
	offsets := []time.Duration{
		-35 * 24 * time.Hour,
		-10 * 24 * time.Hour,
		-3 * 24 * time.Hour,
		-5 * time.Hour,
		-20 * time.Minute,
		0,
	}
	for _, off := range offsets {
		appendAt(t, c, store, now.Add(off), &models.Reading{DeviceID: "A", BatteryVoltage: models.Float64(12)})
	}
	c.now = now

	for window, want := range map[string]int{"1h": 2, "24h": 3, "7d": 4, "30d": 5} {
		history, err := engine.History(context.Background(), window, "A")
		require.NoError(t, err)
		stats, err := engine.Statistics(context.Background(), window, "A")
		require.NoError(t, err)

		assert.Equal(t, want, len(history), window)
		assert.Equal(t, len(history), stats.Count, window)
	}
}

func TestRound2_HalfUp(t *testing.T) {
	assert.Equal(t, 51.67, Round2(155.0/3))
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, 2.5, Round2(2.5))
	assert.Equal(t, 12.0, Round2(11.999))
}
