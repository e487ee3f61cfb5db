package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"walrus-backend/internal/models"
)

// Ingester stores a device submission
type Ingester interface {
	Submit(ctx context.Context, payload *models.DevicePayload) (*models.Reading, error)
}

// DeviceHandler serves the endpoints called by the distillation unit
type DeviceHandler struct {
	ingest Ingester
	logger *zap.Logger
	now    func() time.Time
}

func NewDeviceHandler(ingest Ingester, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{ingest: ingest, logger: logger, now: time.Now}
}

// SubmitData handles POST /api/esp32/data
func (h *DeviceHandler) SubmitData(w http.ResponseWriter, r *http.Request) {
	var payload models.DevicePayload
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: malformed payload: %v", models.ErrInvalidArgument, err))
		return
	}

	stored, err := h.ingest.Submit(r.Context(), &payload)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(stored, "Data stored successfully"))
}

// Test handles GET /api/esp32/test
func (h *DeviceHandler) Test(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "ESP32 connection successful",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
