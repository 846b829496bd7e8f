package handlers

import (
	"context"
	"net/http"
	"time"

	"csacademy/interview/internal/config"
	"csacademy/interview/internal/messages"
	"csacademy/interview/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"` // "ready" | "not_ready"
	Service string                    `json:"service"`
	Checks  map[string]ReadinessCheck `json:"checks"`
}

// Pinger is anything readiness can probe, e.g. the history database or
// redis.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	catalog *messages.Catalog
	config  *config.Config
	probes  map[string]Pinger
}

func NewHealthHandler(catalog *messages.Catalog, cfg *config.Config, probes map[string]Pinger) *HealthHandler {
	return &HealthHandler{catalog: catalog, config: cfg, probes: probes}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interview",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	// message catalog must have every group loaded
	if handler.catalog == nil {
		checks["messages"] = ReadinessCheck{Status: "failed", Message: "Message catalog not initialized"}
		allChecksPass = false
	} else if len(handler.catalog.Groups()) < 2 {
		checks["messages"] = ReadinessCheck{Status: "failed", Message: "Message catalog incomplete"}
		allChecksPass = false
	} else {
		checks["messages"] = ReadinessCheck{Status: "ok"}
	}

	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{Status: "failed", Message: "Configuration not loaded"}
		allChecksPass = false
	} else {
		checks["configuration"] = ReadinessCheck{Status: "ok"}
	}

	ctx, cancel := context.WithTimeout(request.Context(), 2*time.Second)
	defer cancel()
	for name, ping := range handler.probes {
		if err := ping(ctx); err != nil {
			checks[name] = ReadinessCheck{Status: "failed", Message: err.Error()}
			allChecksPass = false
			continue
		}
		checks[name] = ReadinessCheck{Status: "ok"}
	}

	response := ReadinessResponse{
		Service: "interview",
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
