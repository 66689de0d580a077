package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/raksetu/bloodhub/internal/infrastructure/observability"
)

// LoggingMiddleware writes one access log line per request. Health checks
// log at debug so they do not drown the rest.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		level := zerolog.InfoLevel
		switch {
		case rec.status >= http.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case rec.status >= http.StatusBadRequest:
			level = zerolog.WarnLevel
		case r.URL.Path == "/health":
			level = zerolog.DebugLevel
		}

		observability.LoggerFromContext(r.Context()).WithLevel(level).
			Str("route", routeOf(r)).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
