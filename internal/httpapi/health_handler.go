package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	serviceName    = "WALRUS Backend API"
	serviceVersion = "1.0.0"
)

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	logger *zap.Logger
	now    func() time.Time
}

func NewHealthHandler(store Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger, now: time.Now}
}

// Root is the service banner
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "online",
		"service": serviceName,
		"version": serviceVersion,
	})
}

func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "WALRUS API",
		"endpoints": map[string]string{
			"esp32":             "/api/esp32/data",
			"mobile_latest":     "/api/mobile/latest",
			"mobile_history":    "/api/mobile/history",
			"mobile_status":     "/api/mobile/status",
			"mobile_stats":      "/api/mobile/stats",
			"simulation_status": "/api/simulation/status",
		},
	})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	timestamp := h.now().UTC().Format(time.RFC3339)
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":    "unhealthy",
			"database":  "unavailable",
			"error":     err.Error(),
			"timestamp": timestamp,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": timestamp,
	})
}
