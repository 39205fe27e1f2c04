package rest

import (
	"log/slog"
	"net/http"

	"github.com/vi31/anxiety-predictor/pkg/auth"
	"github.com/vi31/anxiety-predictor/pkg/observability"
)

// RouterConfig collects everything the HTTP router serves.
type RouterConfig struct {
	API            *AnxietyHandler
	Health         *HealthHandler
	MetricsHandler http.Handler
	Metrics        *observability.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string

	// Auth, when set, guards the prediction routes with bearer tokens.
	Auth *auth.Verifier
}

// NewRouter builds the HTTP handler with its middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	cfg.API.RegisterRoutes(mux)
	cfg.Health.RegisterRoutes(mux)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}

	mws := []Middleware{
		RecoveryMiddleware(cfg.Logger),
		LoggingMiddleware(cfg.Logger),
		MetricsMiddleware(cfg.Metrics),
		CORSMiddleware(cfg.AllowedOrigins),
	}
	if cfg.Auth != nil {
		mws = append(mws, auth.HTTPMiddleware(cfg.Auth, "/healthz", "/readyz", "/metrics"))
	}
	return Chain(mux, mws...)
}
