package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/plankhq/plank/internal/model"
)

// RateLimit caps requests per client IP over a sliding one-minute window.
// The server mounts it twice: a loose global limit, and a tight one on the
// credential routes so password and key guessing stalls early.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimited),
	)
}

// rateLimited writes the standard error envelope for a 429. httprate's
// default handler emits plain text, which would be the only non-JSON error
// in the API.
func rateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    http.StatusTooManyRequests,
			Message: "rate limit exceeded, retry later",
		},
	})
}
