package httpapi

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/KirkDiggler/hiddenstroke/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDMiddleware tags each request with a unique ID. The ID rides the
// context as a log attribute, so every record emitted while handling the
// request carries it.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := logging.WithAttrs(r.Context(), slog.String("request_id", requestID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.InfoContext(r.Context(), "HTTP request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

// Player identity comes from forwarded headers. Requests without them play
// anonymously under an address-derived identity.
const (
	headerPlayerID   = "X-Player-Id"
	headerPlayerName = "X-Player-Name"

	anonymousName = "Anonymous"
)

// playerIdentity resolves the (ID, name) pair for a request
func playerIdentity(r *http.Request) (string, string) {
	id := r.Header.Get(headerPlayerID)
	name := r.Header.Get(headerPlayerName)

	if id == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		id = "anon:" + host
	}
	if name == "" {
		name = anonymousName
	}

	return id, name
}
