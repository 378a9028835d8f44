package services

import (
	"context"

	"github.com/resonata/resonata-api/internal/logger"
	"github.com/resonata/resonata-api/internal/metrics"
	"github.com/resonata/resonata-api/internal/storage"
)

// PipelineObserver turns planner events into KV counters and metrics
type PipelineObserver struct {
	stats    *storage.Stats
	recorder *metrics.Recorder
}

// NewPipelineObserver accepts nil for either sink
func NewPipelineObserver(stats *storage.Stats, recorder *metrics.Recorder) *PipelineObserver {
	return &PipelineObserver{stats: stats, recorder: recorder}
}

func (o *PipelineObserver) CacheHit(ctx context.Context) {
	o.count(ctx, storage.CounterCacheHits)
	o.recorder.CacheHit(ctx)
}

func (o *PipelineObserver) Fallback(ctx context.Context, reason string) {
	o.count(ctx, storage.CounterFallbacks)
	o.recorder.Fallback(ctx, reason)
}

func (o *PipelineObserver) TokenUsage(ctx context.Context, provider, model string, inputTokens, outputTokens int64) {
	o.recorder.TokenUsage(ctx, provider, model, inputTokens, outputTokens)
}

// RateLimited is called by the rate-limit middleware before it rejects a request
func (o *PipelineObserver) RateLimited(ctx context.Context) {
	o.count(ctx, storage.CounterRateLimited)
	o.recorder.RateLimited(ctx)
}

func (o *PipelineObserver) count(ctx context.Context, name string) {
	if o.stats == nil {
		return
	}
	if err := o.stats.Incr(ctx, name); err != nil {
		logger.Warn("Failed to update counter", logger.Fields{"counter": name, "error": err.Error()})
	}
}
