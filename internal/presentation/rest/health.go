package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ReadinessCheck reports whether one dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// HealthHandler provides HTTP health check endpoints for the anxiety service.
type HealthHandler struct {
	checks       map[string]ReadinessCheck
	logger       *slog.Logger
	startTime    time.Time
	modelVersion string
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(modelVersion string, checks map[string]ReadinessCheck, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checks:       checks,
		logger:       logger,
		startTime:    time.Now(),
		modelVersion: modelVersion,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status       string `json:"status"`
	Service      string `json:"service"`
	Uptime       string `json:"uptime"`
	ModelVersion string `json:"model_version"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

const serviceName = "anxiety-predictor"

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "healthy",
		Service:      serviceName,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		ModelVersion: h.modelVersion,
	})
}

// Readyz handles readiness probe requests. The model is loaded before the
// server starts, so it is always reported ready.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"model": "ok"}
	status, code := "ready", http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("readiness check failed", slog.String("check", name), slog.String("error", err.Error()))
			checks[name] = err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, ReadinessResponse{
		Status:  status,
		Service: serviceName,
		Checks:  checks,
	})
}
