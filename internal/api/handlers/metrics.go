package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resonata/resonata-api/internal/config"
)

const bytesPerMB = 1 << 20

// MetricsHandler reports process runtime figures and the pipeline settings
// that shape every generated piece.
type MetricsHandler struct {
	startTime time.Time
	version   string
	cfg       *config.Config
}

func NewMetricsHandler(cfg *config.Config, version string) *MetricsHandler {
	return &MetricsHandler{startTime: time.Now(), version: version, cfg: cfg}
}

type RuntimeMetrics struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
	MemTotalMB   uint64 `json:"mem_total_mb"`
	NumGC        uint32 `json:"num_gc"`
}

type GuidanceSettings struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Timeout  string `json:"timeout"`
}

type PipelineSettings struct {
	Guidance        GuidanceSettings `json:"guidance"`
	DurationWindowS [2]float64       `json:"duration_window_s"`
	SectionWorkers  int              `json:"section_workers"`
	RateLimit       string           `json:"rate_limit"`
	PlanCacheTTL    string           `json:"plan_cache_ttl"`
	PieceTTL        string           `json:"piece_ttl"`
}

type MetricsResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Uptime    string           `json:"uptime"`
	StartTime string           `json:"start_time"`
	Runtime   RuntimeMetrics   `json:"runtime"`
	Pipeline  PipelineSettings `json:"pipeline"`
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	rateLimit := "disabled"
	if h.cfg.RateLimitRequests > 0 {
		rateLimit = fmt.Sprintf("%d/%s", h.cfg.RateLimitRequests, h.cfg.RateLimitWindow)
	}

	c.JSON(http.StatusOK, MetricsResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(10 * time.Millisecond).String(),
		StartTime: h.startTime.UTC().Format(time.RFC3339),
		Runtime: RuntimeMetrics{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAllocMB:   mem.Alloc / bytesPerMB,
			MemTotalMB:   mem.TotalAlloc / bytesPerMB,
			NumGC:        mem.NumGC,
		},
		Pipeline: PipelineSettings{
			Guidance: GuidanceSettings{
				Enabled:  h.cfg.GuidanceEnabled(),
				Provider: h.cfg.GuidanceProvider,
				Model:    h.cfg.GuidanceModel,
				Timeout:  h.cfg.GuidanceTimeout.String(),
			},
			DurationWindowS: [2]float64{h.cfg.MinPieceSeconds, h.cfg.MaxPieceSeconds},
			SectionWorkers:  h.cfg.SectionWorkers,
			RateLimit:       rateLimit,
			PlanCacheTTL:    h.cfg.PlanCacheTTL.String(),
			PieceTTL:        h.cfg.PieceTTL.String(),
		},
	})
}
