package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"walrus-backend/internal/aggregator"
	"walrus-backend/internal/models"
)

// TelemetryReader is the read side served to the mobile app
type TelemetryReader interface {
	Latest(ctx context.Context, deviceID string) (*models.Reading, bool, error)
	History(ctx context.Context, window, deviceID string) ([]*models.Reading, error)
	Statistics(ctx context.Context, window, deviceID string) (*models.StatsSummary, error)
	Status(ctx context.Context, deviceID string) (*models.StatusJudgment, error)
}

type HistoryResult struct {
	Success  bool              `json:"success"`
	Data     []*models.Reading `json:"data"`
	Count    int               `json:"count"`
	Duration string            `json:"duration"`
}

type MobileHandler struct {
	reader TelemetryReader
	logger *zap.Logger
}

func NewMobileHandler(reader TelemetryReader, logger *zap.Logger) *MobileHandler {
	return &MobileHandler{reader: reader, logger: logger}
}

func (h *MobileHandler) Latest(w http.ResponseWriter, r *http.Request) {
	reading, ok, err := h.reader.Latest(r.Context(), r.URL.Query().Get("device_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, Result{Success: false, Message: "No data available"})
		return
	}
	writeJSON(w, http.StatusOK, Ok(reading, "Latest reading retrieved successfully"))
}

func (h *MobileHandler) History(w http.ResponseWriter, r *http.Request) {
	window := durationParam(r)
	readings, err := h.reader.History(r.Context(), window, r.URL.Query().Get("device_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if readings == nil {
		readings = []*models.Reading{}
	}
	writeJSON(w, http.StatusOK, HistoryResult{
		Success:  true,
		Data:     readings,
		Count:    len(readings),
		Duration: window,
	})
}

func (h *MobileHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.reader.Status(r.Context(), r.URL.Query().Get("device_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *MobileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reader.Statistics(r.Context(), durationParam(r), r.URL.Query().Get("device_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// durationParam defaults only an absent parameter; an empty one is passed on and rejected
func durationParam(r *http.Request) string {
	q := r.URL.Query()
	if !q.Has("duration") {
		return aggregator.DefaultWindow
	}
	return q.Get("duration")
}
