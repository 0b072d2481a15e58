package handler

import (
	"net/http"
	"time"

	"swasthyaflow/app/middleware"
	"swasthyaflow/internal/stream"

	"github.com/gin-gonic/gin"
)

// SystemHandler health and identity endpoints
type SystemHandler struct {
	registry  *stream.Registry
	startedAt time.Time
}

// NewSystemHandler creates system handler
func NewSystemHandler(registry *stream.Registry) *SystemHandler {
	return &SystemHandler{
		registry:  registry,
		startedAt: time.Now(),
	}
}

// Health liveness probe
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"uptime":      int64(time.Since(h.startedAt).Seconds()),
		"subscribers": h.registry.Total(),
	})
}

// Me echoes the resolved caller
func (h *SystemHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userId": middleware.OwnerID(c)})
}
