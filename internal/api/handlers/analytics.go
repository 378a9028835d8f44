package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resonata/resonata-api/internal/logger"
	"github.com/resonata/resonata-api/internal/services"
	"github.com/resonata/resonata-api/internal/storage"
)

type AnalyticsHandler struct {
	stats   *storage.Stats
	history *services.HistoryService // nil without a database
}

func NewAnalyticsHandler(stats *storage.Stats, history *services.HistoryService) *AnalyticsHandler {
	return &AnalyticsHandler{stats: stats, history: history}
}

// GetAnalytics reports the usage counters and, when a database is configured,
// the last day of generation history.
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	counters, err := h.stats.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"success":  true,
		"counters": counters,
	}
	if total := counters[storage.CounterGenerations]; total > 0 {
		resp["cacheHitRate"] = float64(counters[storage.CounterCacheHits]) / float64(total)
		resp["fallbackRate"] = float64(counters[storage.CounterFallbacks]) / float64(total)
	}

	if h.history != nil {
		stats, err := h.history.Stats(c.Request.Context(), time.Now().Add(-24*time.Hour), time.Time{})
		if err != nil {
			fields := logger.WithContext(c)
			fields["error"] = err.Error()
			logger.Warn("Failed to read generation history", fields)
		} else {
			resp["history"] = stats
		}
	}
	c.JSON(http.StatusOK, resp)
}
