package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"csacademy/interview/internal/models"
)

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		GetLogger().Warn("Failed to encode response", zap.Error(err))
	}
}

// WriteError writes an ErrorResponse with the given status.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	JSON(w, statusCode, models.ErrorResponse{Code: code, Message: message, Status: statusCode})
}
