// Package httptransport assembles the public HTTP surface: middleware chain,
// negotiation routes, health and metrics endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	negotiationHandler "dealdesk/internal/negotiation/handler"
	"dealdesk/pkg/platform/middleware/auth"
	"dealdesk/pkg/platform/middleware/requestid"
	"dealdesk/pkg/platform/middleware/requesttime"
)

// NewRouter wires all endpoints. Health and metrics stay outside the auth
// wall; everything else requires a bearer token.
func NewRouter(negotiation *negotiationHandler.Handler, validator auth.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(validator, logger))
		negotiation.Register(r)
	})

	return r
}
