package httpapi

import (
	"encoding/json"
	"net/http"

	"celestia/application/dto"

	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, ErrorResponse{Code: code, Message: message})
}

// statusForFailure maps a failed settlement to its HTTP status
func statusForFailure(reason dto.FailureReason) int {
	switch {
	case reason.IsValidation():
		return http.StatusBadRequest
	case reason == dto.ReasonStorageConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
