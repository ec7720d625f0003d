package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/ll97/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout is the timeout for database health checks
	HealthCheckTimeout = 2 * time.Second
)

// Pinger is the database dependency of the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatasetState reports whether the projection dataset has been built.
type DatasetState interface {
	Ready() bool
	Len() int
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	db        Pinger
	data      DatasetState
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance.
// db is nil when every source is read from files.
func NewHealthHandler(db Pinger, data DatasetState, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		data:      data,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Dataset  string `json:"dataset"`
	Database string `json:"database"`
	Records  int    `json:"records"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health endpoint.
// This is a basic health check that always returns 200 OK.
// It does not check any dependencies and is used for basic liveness checks.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// The service is ready once the dataset is built and, when a database
// source is configured, the database answers a ping.
// Returns 200 OK when ready, 503 Service Unavailable otherwise.
func (h *HealthHandler) Ready(c *gin.Context) {
	response := ReadyResponse{
		Status:   "ready",
		Dataset:  "loaded",
		Database: "not_configured",
	}

	if h.data == nil || !h.data.Ready() {
		response.Status = "not_ready"
		response.Dataset = "loading"
	} else {
		response.Records = h.data.Len()
	}

	if h.db != nil {
		// Create context with timeout for database ping
		ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			// Get logger from context (set by logger middleware)
			if log := middleware.GetLogger(c); log != nil {
				log.Error("Database health check failed", err, map[string]interface{}{
					"timeout": HealthCheckTimeout.String(),
				})
			}
			response.Status = "not_ready"
			response.Database = "disconnected"
		} else {
			response.Database = "connected"
		}
	}

	status := http.StatusOK
	if response.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, and uptime.
func (h *HealthHandler) Info(c *gin.Context) {
	uptime := time.Since(h.startTime)

	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(uptime),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
