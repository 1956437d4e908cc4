package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/EllouziMedAmin/Pedagogical-RAG/api"
	"github.com/EllouziMedAmin/Pedagogical-RAG/tutor"
)

// HealthHandler serves liveness endpoints.
type HealthHandler struct {
	registry *tutor.Registry
	model    string
	logger   *zap.Logger
}

// NewHealthHandler builds the handler. model names the configured
// generation model for the health payload.
func NewHealthHandler(registry *tutor.Registry, model string, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{registry: registry, model: model, logger: logger}
}

// HandleHealth serves GET /health with the live session count.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, api.HealthResponse{
		Status:   "active",
		Sessions: h.registry.Count(),
		Model:    h.model,
	})
}

// VersionInfo is the payload of the version endpoint.
type VersionInfo struct {
	Version   string    `json:"version"`
	BuildTime string    `json:"build_time,omitempty"`
	GitCommit string    `json:"git_commit,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HandleVersion returns a handler reporting build information.
func (h *HealthHandler) HandleVersion(version, buildTime, gitCommit string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, VersionInfo{
			Version:   version,
			BuildTime: buildTime,
			GitCommit: gitCommit,
			Timestamp: time.Now(),
		})
	}
}
