package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// https://github.com/gin-contrib/requestid
func RequestID(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

			loggerWithID := logger.With().Str("request_id", requestID).Logger()
			ctx = loggerWithID.WithContext(ctx)

			loggerWithID.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Msg("request started")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs the outcome of every request, and any recovered panic,
// through the request-scoped zerolog logger set by RequestID.
func RequestLogger() func(http.Handler) http.Handler {
	return chimw.RequestLogger(logFormatter{})
}

type logFormatter struct{}

func (logFormatter) NewLogEntry(r *http.Request) chimw.LogEntry {
	return &logEntry{logger: zerolog.Ctx(r.Context()), method: r.Method, path: r.URL.Path}
}

type logEntry struct {
	logger *zerolog.Logger
	method string
	path   string
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	e.logger.Info().
		Str("method", e.method).
		Str("path", e.path).
		Int("status", status).
		Int("bytes", bytes).
		Int64("duration_ms", elapsed.Milliseconds()).
		Dur("duration", elapsed).
		Msg("request completed")
}

func (e *logEntry) Panic(v any, stack []byte) {
	e.logger.Error().
		Interface("panic", v).
		Bytes("stack", stack).
		Str("method", e.method).
		Str("path", e.path).
		Msg("handler panicked")
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
