package httpserver

import (
	"net/http"
	"time"
)

// RequestTimeout bounds a single eligibility check end to end, including the
// zone fan-out and an outbound geocode call. The router enforces it per
// request; the server write timeout sits above it so the deadline fires
// before the connection is cut.
const RequestTimeout = 30 * time.Second

// New builds the API server around a configured handler chain.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
