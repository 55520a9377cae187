// Package http exposes the calculator as a JSON API.
package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RouterConfig holds what NewRouter wires besides the handler
type RouterConfig struct {
	// APIToken protects /api routes when set
	APIToken string

	// Metrics serves /metrics when set
	Metrics http.Handler

	// Observer receives request outcomes, may be nil
	Observer Observer
}

// NewRouter builds the API routes
func NewRouter(h *Handler, log *logrus.Logger, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestIDMiddleware, LoggingMiddleware(log, cfg.Observer))

	// Public routes
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	// Protected routes
	api := r.PathPrefix("/api").Subrouter()
	if cfg.APIToken != "" {
		api.Use(AuthMiddleware(cfg.APIToken))
	}
	api.HandleFunc("/calculate", h.Calculate).Methods(http.MethodPost)
	api.HandleFunc("/prices", h.Prices).Methods(http.MethodGet)

	return r
}
