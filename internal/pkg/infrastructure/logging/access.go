package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// AccessLog logs one line per request and stores a request scoped logger,
// tagged with the trace id when one exists, in the request context.
func AccessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			requestLogger := logger
			if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
				requestLogger = logger.With().Str("trace_id", sc.TraceID().String()).Logger()
			}

			ctx := NewContextWithLogger(r.Context(), requestLogger)
			next.ServeHTTP(ww, r.WithContext(ctx))

			requestLogger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("http access")
		})
	}
}
