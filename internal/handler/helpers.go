package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/store"
)

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error response using the standard error
// envelope. The optional ctx map provides additional context fields.
func writeError(w http.ResponseWriter, code int, message string, ctx ...map[string]interface{}) {
	var ctxMap map[string]interface{}
	if len(ctx) > 0 {
		ctxMap = ctx[0]
	}
	writeJSON(w, code, model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    code,
			Message: message,
			Context: ctxMap,
		},
	})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// pathID extracts a numeric URL parameter. Route patterns accept any string
// in ID position, so a non-numeric segment reaches the handler and is
// reported as an internal error rather than a client error.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error",
			map[string]interface{}{"param": name, "value": raw})
		return 0, false
	}
	return id, true
}

// queryInt extracts an integer query parameter, returning defaultVal if the
// parameter is missing or cannot be parsed.
func queryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// writeStoreError maps a store error to an HTTP response. ErrNotFound is a
// 404; constraint violations surface as client errors; anything else is a
// 500.
func writeStoreError(w http.ResponseWriter, err error, fallbackMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, fallbackMsg+": not found")
		return
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "duplicate entry"):
		writeError(w, http.StatusConflict, fallbackMsg+": "+err.Error())
	case strings.Contains(lower, "not null constraint") ||
		strings.Contains(lower, "null value in column"):
		writeError(w, http.StatusBadRequest, fallbackMsg+": "+err.Error())
	case strings.Contains(lower, "foreign key"):
		writeError(w, http.StatusBadRequest, fallbackMsg+": "+err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallbackMsg+": "+err.Error())
	}
}

// listResponse wraps resources in the standard list envelope.
func listResponse(resource interface{}, count int) model.ListResponse {
	return model.ListResponse{
		Resource: resource,
		Meta:     &model.ResponseMeta{Count: count},
	}
}
