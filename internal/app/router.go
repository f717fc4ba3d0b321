// Package app wires the HTTP router and readiness checks.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/fairyhunter13/sermon-evaluator/internal/adapter/httpserver"
	"github.com/fairyhunter13/sermon-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/sermon-evaluator/internal/config"
	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server, verifier domain.IdentityVerifier) http.Handler {
	r := chi.NewRouter()
	// Security & instrumentation middleware
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	// The analyze flow blocks on the AI provider, so the request deadline
	// must outlast the provider timeout.
	r.Use(httpserver.TimeoutMiddleware(cfg.AIHTTPTimeout + 10*time.Second))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Authenticated API
	r.Group(func(ar chi.Router) {
		ar.Use(httpserver.BearerAuth(verifier))

		// Rate limit mutating endpoints
		ar.Group(func(wr chi.Router) {
			wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
			wr.Post("/v1/sermons", srv.CreateSermonHandler())
			wr.Post("/v1/sermons/{id}/analyze", srv.AnalyzeHandler())
		})

		// Read-only endpoints
		ar.Get("/v1/sermons", srv.ListSermonsHandler())
		ar.Get("/v1/sermons/{id}", srv.GetSermonHandler())
		ar.Get("/v1/sermons/{id}/report", srv.ReportHandler())
		ar.Get("/v1/sermons/{id}/heatmap", srv.HeatmapHandler())
		ar.Get("/v1/recommendations", srv.RecommendationsHandler())
	})

	// Health and metrics
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })
	r.Get("/readyz", srv.ReadyzHandler())

	return httpserver.SecurityHeaders(r)
}
