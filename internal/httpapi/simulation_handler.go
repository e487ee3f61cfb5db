package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"walrus-backend/internal/models"
	"walrus-backend/internal/simulator"
)

// Simulator is the control plane of the simulated device
type Simulator interface {
	Start() bool
	Stop() bool
	SetInterval(seconds int) int
	Status() models.SimulationStatus
}

type SimulationResult struct {
	Message string `json:"message"`
	models.SimulationStatus
}

type SimulationConfig struct {
	IntervalSeconds *int `json:"interval_seconds"`
}

type SimulationHandler struct {
	sim    Simulator
	logger *zap.Logger
}

func NewSimulationHandler(sim Simulator, logger *zap.Logger) *SimulationHandler {
	return &SimulationHandler{sim: sim, logger: logger}
}

func (h *SimulationHandler) Start(w http.ResponseWriter, r *http.Request) {
	message := "Simulation started"
	if !h.sim.Start() {
		message = "Simulation is already running"
	}
	writeJSON(w, http.StatusOK, SimulationResult{Message: message, SimulationStatus: h.sim.Status()})
}

func (h *SimulationHandler) Stop(w http.ResponseWriter, r *http.Request) {
	message := "Simulation stopped"
	if !h.sim.Stop() {
		message = "Simulation is not running"
	}
	writeJSON(w, http.StatusOK, SimulationResult{Message: message, SimulationStatus: h.sim.Status()})
}

func (h *SimulationHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sim.Status())
}

// UpdateConfig rejects out-of-range intervals instead of clamping them
func (h *SimulationHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg SimulationConfig
	if err := readBodyJSON(r, maxBodyBytes, &cfg); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: malformed config: %v", models.ErrInvalidArgument, err))
		return
	}
	if cfg.IntervalSeconds == nil {
		writeError(w, h.logger, fmt.Errorf("%w: interval_seconds is required", models.ErrInvalidArgument))
		return
	}

	seconds := *cfg.IntervalSeconds
	if seconds < simulator.MinIntervalSeconds || seconds > simulator.MaxIntervalSeconds {
		writeError(w, h.logger, fmt.Errorf("%w: interval_seconds must be between %d and %d",
			models.ErrInvalidArgument, simulator.MinIntervalSeconds, simulator.MaxIntervalSeconds))
		return
	}

	h.sim.SetInterval(seconds)
	writeJSON(w, http.StatusOK, SimulationResult{Message: "Configuration updated", SimulationStatus: h.sim.Status()})
}
