// Package api exposes device availability over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"gui-agent/internal/application/port/input"
	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"

	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	registry output.DeviceRegistry
	checker  input.AvailabilityChecker
	logger   output.LoggerPort
}

func NewHandlers(registry output.DeviceRegistry, checker input.AvailabilityChecker, logger output.LoggerPort) *Handlers {
	return &Handlers{
		registry: registry,
		checker:  checker,
		logger:   logger.WithField("component", "api"),
	}
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.HandleHealthCheck)
	r.Get("/devices", h.HandleDevices)
	r.Get("/adb/availability", h.HandleAvailability)
}

func (h *Handlers) HandleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type deviceView struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Model string `json:"model,omitempty"`
}

type devicesResponse struct {
	Available bool         `json:"available"`
	Devices   []deviceView `json:"devices"`
}

// HandleDevices reports the registry as last refreshed. It does not probe ADB.
func (h *Handlers) HandleDevices(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, http.StatusOK, devicesResponse{
		Available: h.registry.Available(),
		Devices:   toViews(h.registry.Devices()),
	})
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

// HandleAvailability probes ADB, refreshing the registry, and reports the result.
func (h *Handlers) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	available := h.checker.Check(r.Context())
	h.respond(w, http.StatusOK, availabilityResponse{Available: available})
}

func (h *Handlers) respond(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func toViews(devices []entity.Device) []deviceView {
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, deviceView{ID: d.ID, State: string(d.State), Model: d.Model})
	}
	return views
}
