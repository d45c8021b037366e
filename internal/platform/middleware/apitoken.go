package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

const apiTokenHeader = "X-API-Token"

// RequireAPIToken rejects requests whose X-API-Token header does not match
// the configured token. An empty configured token disables the check (local
// development). Comparison is constant-time.
func RequireAPIToken(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			supplied := r.Header.Get(apiTokenHeader)
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
				logger.WarnContext(r.Context(), "rejected request with invalid API token",
					"path", r.URL.Path,
					"request_id", GetRequestID(r.Context()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
