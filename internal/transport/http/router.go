// Package httptransport assembles the HTTP surface: public address
// resolution, authenticated delivery-job routes, health and metrics.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"herald/internal/platform/metrics"
	"herald/pkg/platform/httputil"
	authmw "herald/pkg/platform/middleware/auth"
	"herald/pkg/platform/middleware/metadata"
	"herald/pkg/platform/middleware/requestid"
	"herald/pkg/platform/middleware/requesttime"
)

// Registrar lets domain handlers mount their own routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports readiness of a backing dependency.
type HealthChecker func() error

// RouterConfig carries everything the router needs. Domain handlers come in
// as registrars so the transport layer stays free of business types.
type RouterConfig struct {
	Logger    *slog.Logger
	Validator authmw.TokenValidator
	Metrics   *metrics.Metrics

	// Jobs routes require an authenticated owner; Address routes are public.
	Jobs    Registrar
	Address Registrar

	// Optional dependency probes surfaced by /healthz.
	Checks map[string]HealthChecker
}

// NewRouter wires middleware and mounts all endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/healthz", handleHealth(cfg.Checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if cfg.Address != nil {
		cfg.Address.Register(r)
	}

	if cfg.Jobs != nil {
		r.Group(func(protected chi.Router) {
			protected.Use(authmw.RequireOwner(cfg.Validator, cfg.Logger))
			cfg.Jobs.Register(protected)
		})
	}

	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
