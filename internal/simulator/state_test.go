package simulator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState_InitialValues(t *testing.T) {
	s := NewState()

	assert.Equal(t, int64(0), s.Tick)
	assert.Equal(t, 50.0, s.BasinTemp)
	assert.Equal(t, 30.0, s.CondenserTemp)
	assert.Equal(t, 250, s.TDSPPM)
	assert.Equal(t, 15.0, s.WaterLevel)
	assert.Equal(t, 12.6, s.BatteryVoltage)
	assert.Equal(t, 1.5, s.SolarCurrent)
	assert.Equal(t, StateDistilling, s.SystemState)
	assert.False(t, s.PumpActive)
	assert.True(t, s.FanActive)
}

func TestDayFactor_Range(t *testing.T) {
	for tick := int64(0); tick < 1000; tick++ {
		d := DayFactor(tick)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.LessOrEqual(t, d, 1.0)
	}
	assert.InDelta(t, 0.5, DayFactor(0), 1e-9)
}

func TestStep_ReadingsStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := NewState()

	for i := 0; i < 50000; i++ {
		s.Step(rng)
		r := s.Reading("WALRUS_SIM")

		require.Equal(t, int64(i+1), s.Tick)
		require.GreaterOrEqual(t, *r.BasinTemp, MinBasinTemp)
		require.LessOrEqual(t, *r.BasinTemp, MaxBasinTemp)
		require.GreaterOrEqual(t, *r.CondenserTemp, MinCondenserTemp)
		require.LessOrEqual(t, *r.CondenserTemp, MaxCondenserTemp)
		require.GreaterOrEqual(t, *r.TDSPPM, MinTDSPPM)
		require.LessOrEqual(t, *r.TDSPPM, MaxTDSPPM)
		require.GreaterOrEqual(t, *r.WaterLevelCM, MinWaterLevel)
		require.LessOrEqual(t, *r.WaterLevelCM, MaxWaterLevel)
		require.GreaterOrEqual(t, *r.SolarCurrent, MinSolarCurrent)
		require.LessOrEqual(t, *r.SolarCurrent, MaxSolarCurrent)
		require.GreaterOrEqual(t, *r.BatteryVoltage, MinBattery)
		require.LessOrEqual(t, *r.BatteryVoltage, MaxBattery)

		require.Equal(t, s.BasinTemp > fanOnBasinTemp, *r.FanActive)
		require.Contains(t, []string{StateIdle, StateRefilling, StateDistilling, StateSleep}, *r.SystemState)
	}
}

func TestStep_ReadingIsRoundedToTwoDecimals(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewState()

	for i := 0; i < 100; i++ {
		s.Step(rng)
		r := s.Reading("WALRUS_SIM")
		for _, v := range []float64{*r.BasinTemp, *r.CondenserTemp, *r.WaterLevelCM, *r.BatteryVoltage, *r.SolarCurrent} {
			assert.InDelta(t, round2(v), v, 1e-9)
		}
		assert.Equal(t, "WALRUS_SIM", r.DeviceID)
		assert.Empty(t, r.ID)
	}
}

func TestStep_LowWaterStartsRefill(t *testing.T) {
	s := NewState()
	s.WaterLevel = 5.01

	s.Step(rand.New(rand.NewSource(1)))

	// Draining at least 0.05 crosses the low mark
	assert.Less(t, s.WaterLevel, lowWaterLevel)
	assert.True(t, s.PumpActive)
}

func TestStep_HighWaterStopsRefill(t *testing.T) {
	s := NewState()
	s.SystemState = StateRefilling
	s.PumpActive = true
	s.WaterLevel = 19.9

	s.Step(rand.New(rand.NewSource(1)))

	assert.Greater(t, s.WaterLevel, highWaterLevel)
	assert.False(t, s.PumpActive)
}

func TestStep_RefillCycleCompletes(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := NewState()

	sawRefill := false
	sawDistillAfterRefill := false
	for i := 0; i < 20000 && !sawDistillAfterRefill; i++ {
		s.Step(rng)
		if s.PumpActive {
			sawRefill = true
		} else if sawRefill {
			sawDistillAfterRefill = true
		}
	}

	assert.True(t, sawRefill)
	assert.True(t, sawDistillAfterRefill)
}

func TestStep_SameSeedSameSequence(t *testing.T) {
	a, b := NewState(), NewState()
	rngA, rngB := rand.New(rand.NewSource(99)), rand.New(rand.NewSource(99))

	for i := 0; i < 500; i++ {
		a.Step(rngA)
		b.Step(rngB)
	}
	assert.Equal(t, *a, *b)
}

func TestClampInterval(t *testing.T) {
	for in, want := range map[int]int{-5: 1, 0: 1, 1: 1, 42: 42, 300: 300, 301: 300, 1000: 300} {
		assert.Equal(t, want, clampInterval(in), "input %d", in)
	}
}
