package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// RequestIDKey is the context key for the request ID.
const RequestIDKey contextKey = "request_id"

// requestIDHeader is the correlation header echoed on every response.
const requestIDHeader = "X-Request-ID"

// maxInboundIDLen caps client-supplied request IDs so log lines stay bounded.
const maxInboundIDLen = 64

// RequestID tags every request with a UUID v7. A client-supplied
// X-Request-ID within the length cap is kept instead, so callers can
// correlate retries across their logs and ours.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > maxInboundIDLen {
			id = uuid.Must(uuid.NewV7()).String()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the ID stored by RequestID, or an empty string.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
