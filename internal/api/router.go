package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/resonata/resonata-api/internal/api/handlers"
	apimiddleware "github.com/resonata/resonata-api/internal/api/middleware"
	"github.com/resonata/resonata-api/internal/config"
	"github.com/resonata/resonata-api/internal/metrics"
	"github.com/resonata/resonata-api/internal/ratelimit"
	"github.com/resonata/resonata-api/internal/services"
	"github.com/resonata/resonata-api/internal/storage"
	"github.com/resonata/resonata-api/internal/style"
)

// Dependencies are the long-lived components the handlers share
type Dependencies struct {
	Config      *config.Config
	Version     string
	Composition *services.CompositionService
	Profiles    *style.Store
	Pieces      *storage.PieceStore
	Stats       *storage.Stats
	History     *services.HistoryService // optional
	Limiter     *ratelimit.Limiter
	Observer    *services.PipelineObserver
	Recorder    *metrics.Recorder // optional
}

func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.Recorder))

	router.Use(apimiddleware.CORS())

	// Client identity for rate limiting and piece ownership
	if cfg.IsGatewayMode() {
		router.Use(apimiddleware.GatewayAuth())
	} else {
		router.Use(apimiddleware.NoAuth())
	}

	healthHandler := handlers.NewHealthHandler(cfg, deps.Version)
	router.GET("/health", healthHandler.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.HealthCheck)

		metricsHandler := handlers.NewMetricsHandler(cfg, deps.Version)
		api.GET("/metrics", metricsHandler.GetMetrics)

		analyticsHandler := handlers.NewAnalyticsHandler(deps.Stats, deps.History)
		api.GET("/analytics", analyticsHandler.GetAnalytics)

		styleHandler := handlers.NewStyleHandler(deps.Profiles)
		api.GET("/composers", styleHandler.ListComposers)
		api.GET("/style-profile", styleHandler.GetProfile)

		// Generation is rate limited per client before any pipeline work
		var onLimited func(context.Context)
		if deps.Observer != nil {
			onLimited = deps.Observer.RateLimited
		}
		generationHandler := handlers.NewGenerationHandler(deps.Composition)
		api.POST("/generate", apimiddleware.RateLimit(deps.Limiter, onLimited), generationHandler.Generate)

		piecesHandler := handlers.NewPiecesHandler(deps.Pieces)
		api.GET("/pieces", piecesHandler.List)
		api.GET("/pieces/:id/midi", piecesHandler.DownloadMIDI)
	}

	return router
}
