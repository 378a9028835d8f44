// Package app wires the long-lived components shared by the HTTP server and
// the command-line tool.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/resonata/resonata-api/internal/api"
	"github.com/resonata/resonata-api/internal/config"
	"github.com/resonata/resonata-api/internal/database"
	"github.com/resonata/resonata-api/internal/guidance"
	"github.com/resonata/resonata-api/internal/kv"
	"github.com/resonata/resonata-api/internal/llm"
	"github.com/resonata/resonata-api/internal/metrics"
	"github.com/resonata/resonata-api/internal/observability"
	"github.com/resonata/resonata-api/internal/ratelimit"
	"github.com/resonata/resonata-api/internal/score"
	"github.com/resonata/resonata-api/internal/services"
	"github.com/resonata/resonata-api/internal/storage"
	"github.com/resonata/resonata-api/internal/style"
)

// App holds every shared component; Close releases the KV store
type App struct {
	Deps  api.Dependencies
	store kv.Store
}

// Build wires the application from configuration
func Build(ctx context.Context, cfg *config.Config, version string) (*App, error) {
	profiles, err := loadProfiles(cfg)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	cloudwatch, err := metrics.NewClient(ctx, cfg.Environment, cfg.CloudWatchEnabled)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("cloudwatch: %w", err)
	}
	recorder := metrics.NewRecorder(metrics.NewSentryMetrics(cfg.SentryDSN != ""), cloudwatch)

	stats := storage.NewStats(store)
	pieces := storage.NewPieceStore(store, cfg.PieceTTL)
	observer := services.NewPipelineObserver(stats, recorder)

	remote, err := remoteProvider(ctx, cfg, observer)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	planner := guidance.NewPlanner(guidance.PlannerOptions{
		Profiles:   profiles,
		Cache:      storage.NewPlanCache(store, cfg.PlanCacheTTL),
		Remote:     remote,
		Observer:   observer,
		Timeout:    cfg.GuidanceTimeout,
		MinSeconds: cfg.MinPieceSeconds,
		MaxSeconds: cfg.MaxPieceSeconds,
	})

	var history *services.HistoryService
	var recorderHistory services.HistoryRecorder = services.NopHistory{}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if db != nil {
		if err := database.Migrate(db); err != nil {
			_ = store.Close()
			return nil, err
		}
		history = services.NewHistoryService(db)
		recorderHistory = history
	}

	composition := services.NewCompositionService(services.CompositionOptions{
		Profiles:  profiles,
		Planner:   planner,
		Assembler: score.NewAssembler(cfg.MinPieceSeconds, cfg.MaxPieceSeconds),
		Pieces:    pieces,
		Stats:     stats,
		History:   recorderHistory,
		Recorder:  recorder,
		Workers:   cfg.SectionWorkers,
	})

	return &App{
		store: store,
		Deps: api.Dependencies{
			Config:      cfg,
			Version:     version,
			Composition: composition,
			Profiles:    profiles,
			Pieces:      pieces,
			Stats:       stats,
			History:     history,
			Limiter:     ratelimit.New(store, cfg.RateLimitRequests, cfg.RateLimitWindow),
			Observer:    observer,
			Recorder:    recorder,
		},
	}, nil
}

// Close releases the KV store
func (a *App) Close() error {
	return a.store.Close()
}

func loadProfiles(cfg *config.Config) (*style.Store, error) {
	if cfg.StyleProfilesPath != "" {
		profiles, err := style.LoadFile(cfg.StyleProfilesPath)
		if err != nil {
			return nil, fmt.Errorf("style profiles: %w", err)
		}
		return profiles, nil
	}
	profiles, err := style.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("style profiles: %w", err)
	}
	return profiles, nil
}

func openStore(cfg *config.Config) (kv.Store, error) {
	if cfg.KVDir == "" {
		log.Println("📦 KV store: in-memory")
		return kv.NewMemory(), nil
	}
	store, err := kv.NewBadger(kv.BadgerOptions{Dir: cfg.KVDir})
	if err != nil {
		return nil, fmt.Errorf("open kv store: %w", err)
	}
	log.Printf("📦 KV store: badger (%s)", cfg.KVDir)
	return store, nil
}

// remoteProvider returns nil when no guidance provider has credentials
func remoteProvider(ctx context.Context, cfg *config.Config, observer guidance.Observer) (guidance.Provider, error) {
	if !cfg.GuidanceEnabled() {
		log.Printf("🎼 Guidance: local rules only (provider %q not configured)", cfg.GuidanceProvider)
		return nil, nil
	}
	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	provider, err := factory.GetProvider(ctx, cfg.GuidanceModel, cfg.GuidanceProvider)
	if err != nil {
		return nil, fmt.Errorf("guidance provider: %w", err)
	}
	remote, err := guidance.NewRemoteProvider(provider, cfg.GuidanceModel, observability.InitializeLangfuse(ctx, cfg), observer)
	if err != nil {
		return nil, err
	}
	log.Printf("🎼 Guidance: %s (timeout %s)", provider.Name(), cfg.GuidanceTimeout)
	return remote, nil
}
