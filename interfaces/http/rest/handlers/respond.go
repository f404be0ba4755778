package handlers

import (
	"encoding/json"
	"net/http"

	pkgerrors "patchbay/pkg/errors"

	"go.uber.org/zap"
)

// errorResponse is the wire shape of a failed request
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError maps the error taxonomy onto HTTP status codes
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	kind := "INTERNAL"

	switch {
	case pkgerrors.IsValidation(err):
		status = http.StatusBadRequest
		kind = "VALIDATION"
	case pkgerrors.IsNotFound(err):
		status = http.StatusNotFound
		kind = "NOT_FOUND"
	case pkgerrors.IsConflict(err):
		status = http.StatusConflict
		kind = "CONFLICT"
	default:
		logger.Error("request failed", zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Error: kind, Message: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, logger, pkgerrors.NewValidation("invalid request body"))
		return false
	}
	return true
}
