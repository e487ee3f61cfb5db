package simulator

import (
	"math"
	"math/rand"

	"walrus-backend/internal/models"
)

const (
	StateIdle       = "Idle"
	StateRefilling  = "Refilling"
	StateDistilling = "Distilling"
	StateSleep      = "Sleep"
)

// Physical ranges every emitted reading stays within
const (
	MinBasinTemp     = 35.0
	MaxBasinTemp     = 65.0
	MinCondenserTemp = 20.0
	MaxCondenserTemp = 45.0
	MinTDSPPM        = 100
	MaxTDSPPM        = 600
	MinWaterLevel    = 2.0
	MaxWaterLevel    = 25.0
	MinSolarCurrent  = 0.0
	MaxSolarCurrent  = 4.5
	MinBattery       = 10.8
	MaxBattery       = 13.8
)

const (
	dayCycleRate = 0.05

	lowWaterLevel  = 5.0  // below: refill, pump on
	highWaterLevel = 20.0 // above: distill, pump off

	fanOnBasinTemp  = 48.0
	baselineLoadAmp = 0.8
	stateJumpChance = 0.02
)

// jumpStates are the labels a spontaneous state change can land on
var jumpStates = []string{StateIdle, StateDistilling, StateSleep}

// State is the simulated unit's physical state.
// Exactly one goroutine, the engine's tick loop, owns and mutates it.
type State struct {
	Tick           int64
	BasinTemp      float64
	CondenserTemp  float64
	TDSPPM         int
	WaterLevel     float64
	BatteryVoltage float64
	SolarCurrent   float64
	SystemState    string
	PumpActive     bool
	FanActive      bool
}

// NewState returns the fixed starting point of a simulation run
func NewState() *State {
	return &State{
		BasinTemp:      50.0,
		CondenserTemp:  30.0,
		TDSPPM:         250,
		WaterLevel:     15.0,
		BatteryVoltage: 12.6,
		SolarCurrent:   1.5,
		SystemState:    StateDistilling,
		PumpActive:     false,
		FanActive:      true,
	}
}

// DayFactor is a slow sinusoidal cycle in [0,1] shared by the coupled fields
func DayFactor(tick int64) float64 {
	return (math.Sin(float64(tick)*dayCycleRate) + 1) / 2
}

// Step advances the state by one tick
func (s *State) Step(rng *rand.Rand) {
	day := DayFactor(s.Tick)

	// Temperatures relax toward day-cycle targets; the condenser runs cooler with a smaller swing
	targetBasin := 42 + day*16
	s.BasinTemp += (targetBasin-s.BasinTemp)*0.15 + uniform(rng, -0.3, 0.3)
	s.BasinTemp = clamp(s.BasinTemp, MinBasinTemp, MaxBasinTemp)

	targetCondenser := 24 + day*6
	s.CondenserTemp += (targetCondenser-s.CondenserTemp)*0.1 + uniform(rng, -0.2, 0.2)
	s.CondenserTemp = clamp(s.CondenserTemp, MinCondenserTemp, MaxCondenserTemp)

	s.TDSPPM += rng.Intn(11) - 5
	if s.TDSPPM < MinTDSPPM {
		s.TDSPPM = MinTDSPPM
	} else if s.TDSPPM > MaxTDSPPM {
		s.TDSPPM = MaxTDSPPM
	}

	switch s.SystemState {
	case StateDistilling:
		s.WaterLevel -= uniform(rng, 0.05, 0.15)
	case StateRefilling:
		s.WaterLevel += uniform(rng, 0.3, 0.6)
	}
	if s.WaterLevel < lowWaterLevel {
		s.SystemState = StateRefilling
		s.PumpActive = true
	} else if s.WaterLevel > highWaterLevel {
		s.SystemState = StateDistilling
		s.PumpActive = false
	}
	s.WaterLevel = clamp(s.WaterLevel, MinWaterLevel, MaxWaterLevel)

	s.SolarCurrent = clamp(day*2.5+uniform(rng, -0.1, 0.1), MinSolarCurrent, MaxSolarCurrent)

	charge := (s.SolarCurrent - baselineLoadAmp) * 0.01
	s.BatteryVoltage += charge + uniform(rng, -0.02, 0.02)
	s.BatteryVoltage = clamp(s.BatteryVoltage, MinBattery, MaxBattery)

	s.FanActive = s.BasinTemp > fanOnBasinTemp

	// Operator overrides can land anywhere, including against the water controller.
	// The controller corrects it on a later tick.
	if rng.Float64() < stateJumpChance {
		s.SystemState = jumpStates[rng.Intn(len(jumpStates))]
	}

	s.Tick++
}

// Reading renders the state as an unsaved reading
func (s *State) Reading(deviceID string) *models.Reading {
	return &models.Reading{
		DeviceID:       deviceID,
		BasinTemp:      models.Float64(round2(s.BasinTemp)),
		CondenserTemp:  models.Float64(round2(s.CondenserTemp)),
		TDSPPM:         models.Int(s.TDSPPM),
		WaterLevelCM:   models.Float64(round2(s.WaterLevel)),
		BatteryVoltage: models.Float64(round2(s.BatteryVoltage)),
		SolarCurrent:   models.Float64(round2(s.SolarCurrent)),
		SystemState:    models.String(s.SystemState),
		PumpActive:     models.Bool(s.PumpActive),
		FanActive:      models.Bool(s.FanActive),
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
