package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router uses the standard library ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// method rejects requests whose method differs from want
func method(want string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != want {
			w.Header().Set("Allow", want)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterDeviceRoutes registers the device-facing endpoints behind the API key check
func (r *Router) RegisterDeviceRoutes(d *DeviceHandler, apiKey string) {
	auth := RequireAPIKey(apiKey)
	r.Handle("/api/esp32/data", method(http.MethodPost, auth(d.SubmitData)))
	r.Handle("/api/esp32/test", method(http.MethodGet, auth(d.Test)))
}

func (r *Router) RegisterMobileRoutes(m *MobileHandler) {
	r.Handle("/api/mobile/latest", method(http.MethodGet, m.Latest))
	r.Handle("/api/mobile/history", method(http.MethodGet, m.History))
	r.Handle("/api/mobile/status", method(http.MethodGet, m.Status))
	r.Handle("/api/mobile/stats", method(http.MethodGet, m.Stats))
}

func (r *Router) RegisterSimulationRoutes(s *SimulationHandler) {
	r.Handle("/api/simulation/start", method(http.MethodPost, s.Start))
	r.Handle("/api/simulation/stop", method(http.MethodPost, s.Stop))
	r.Handle("/api/simulation/status", method(http.MethodGet, s.Status))
	r.Handle("/api/simulation/config", method(http.MethodPatch, s.UpdateConfig))
}

func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.Handle("/health", method(http.MethodGet, h.Health))
	r.Handle("/api", method(http.MethodGet, h.Index))
	r.Handle("/", func(w http.ResponseWriter, req *http.Request) {
		// "/" matches every unregistered path
		if req.URL.Path != "/" {
			writeJSON(w, http.StatusNotFound, Fail("not found"))
			return
		}
		method(http.MethodGet, h.Root)(w, req)
	})
}
