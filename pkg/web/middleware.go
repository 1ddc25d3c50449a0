package web

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// requestID tags each request with an X-Request-ID (generated when the
// client didn't send one) and logs request completion with timing.
func requestID(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)

			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(wrapped, r)

			reqLogger := logger.With(
				"request", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration", time.Since(start),
			)
			if wrapped.status >= 400 {
				reqLogger.Warn("request completed")
			} else {
				reqLogger.Debug("request completed")
			}
		})
	}
}

// statusWriter captures the response status code for logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
