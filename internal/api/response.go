package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/oprema/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps a store error to the matching HTTP response. Errors
// without a contract code are persistence failures: those get logged and
// hidden behind a generic 500.
func storeError(w http.ResponseWriter, err error) {
	message := err.Error()
	var e *store.Error
	if errors.As(err, &e) {
		message = e.Message
	}

	switch store.ErrorCode(err) {
	case store.CodeValidation:
		jsonError(w, http.StatusBadRequest, message)
	case store.CodeNotFound:
		jsonError(w, http.StatusNotFound, message)
	case store.CodeConflict:
		jsonError(w, http.StatusConflict, message)
	case store.CodeInvalidTransition:
		jsonError(w, http.StatusUnprocessableEntity, message)
	default:
		slog.Error("store operation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
