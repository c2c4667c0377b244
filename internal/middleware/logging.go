package middleware

import (
	"net/http"
	"time"

	"detectwidget/internal/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Logging logs one line per request with status, size and duration.
func Logging(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// The wrapper keeps http.Hijacker available for websocket upgrades.
			wrapped := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(wrapped, r)

			status := wrapped.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info(
				"method=%s path=%s status=%d duration=%s bytes=%d ip=%s",
				r.Method,
				r.URL.Path,
				status,
				time.Since(start),
				wrapped.BytesWritten(),
				r.RemoteAddr,
			)
		})
	}
}
