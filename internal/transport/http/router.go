package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"addresseligibility/internal/platform/httpserver"
	"addresseligibility/internal/platform/middleware"
)

// NewRouter assembles the middleware chain and mounts all endpoints. Health
// and metrics stay outside the API-token gate so probes and scrapers work
// without credentials.
func NewRouter(h *Handler, apiToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Timeout(httpserver.RequestTimeout))

	r.Get("/api/v1/address/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAPIToken(apiToken, logger))
		h.Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
