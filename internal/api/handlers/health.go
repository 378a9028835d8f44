package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resonata/resonata-api/internal/config"
)

type HealthHandler struct {
	cfg     *config.Config
	version string
}

func NewHealthHandler(cfg *config.Config, version string) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: version}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	guidanceStatus := "local"
	if h.cfg.GuidanceEnabled() {
		guidanceStatus = h.cfg.GuidanceProvider
	}
	storage := "memory"
	if h.cfg.KVDir != "" {
		storage = "badger"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": h.version,
		"guidance": gin.H{
			"provider": guidanceStatus,
			"timeout":  h.cfg.GuidanceTimeout.String(),
		},
		"storage": storage,
	})
}
