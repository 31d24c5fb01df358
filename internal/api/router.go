// Package api exposes the recommendation pipeline over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	FrontendURL string
}

// NewRouter wires middleware and routes onto a chi router.
func NewRouter(cfg RouterConfig, handler *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Use(PrometheusMetrics)
		r.Get("/health", handler.Health)
		r.Post("/recommendations", handler.Recommendations)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
