package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/danielostrow/planVision/internal/apperr"
	"github.com/danielostrow/planVision/internal/dto"
	"github.com/danielostrow/planVision/internal/logger"
)

func writeJSON(w http.ResponseWriter, logger *logger.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// writeError maps err to its status. Validation messages go back to the
// client; anything else is logged and answered generically.
func writeError(w http.ResponseWriter, logger *logger.Logger, op string, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusBadRequest {
		logger.Warning("%s rejected: %v", op, err)
		writeJSON(w, logger, status, dto.ErrorResponse{Error: err.Error()})
		return
	}
	logger.Error("%s failed: %v", op, err)
	writeJSON(w, logger, status, dto.ErrorResponse{Error: http.StatusText(status)})
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// isTooLarge reports whether err comes from a body over the MaxBytesReader bound.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
