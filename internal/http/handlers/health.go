package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	service     string
	aiAvailable func() bool
	pingDB      func(ctx context.Context) error
}

// NewHealthHandler reports liveness. Either check may be nil.
func NewHealthHandler(service string, aiAvailable func() bool, pingDB func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{service: service, aiAvailable: aiAvailable, pingDB: pingDB}
}

// GET /health, /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ai := h.aiAvailable != nil && h.aiAvailable()
	db := false
	if h.pingDB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		db = h.pingDB(ctx) == nil
	}
	status := "ok"
	if !db {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"service":   h.service,
		"ai":        ai,
		"db":        db,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
