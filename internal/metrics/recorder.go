package metrics

import (
	"context"
	"time"
)

// CloudWatch metric names for pipeline events
const (
	MetricCacheHits         = "PlanCacheHits"
	MetricGuidanceFallbacks = "GuidanceFallbacks"
	MetricRateLimited       = "RateLimited"
)

// Recorder fans pipeline and API metrics out to Sentry and CloudWatch.
// A nil Recorder records nothing.
type Recorder struct {
	sentry     *SentryMetrics
	cloudwatch *Client
}

func NewRecorder(sentryMetrics *SentryMetrics, cloudwatch *Client) *Recorder {
	return &Recorder{sentry: sentryMetrics, cloudwatch: cloudwatch}
}

func (r *Recorder) APIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	if r.sentry != nil {
		r.sentry.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	}
	if r.cloudwatch != nil {
		r.cloudwatch.RecordAPIRequest(endpoint, statusCode, duration)
	}
}

func (r *Recorder) Generation(ctx context.Context, duration time.Duration, planSource string, success bool) {
	if r == nil {
		return
	}
	if r.sentry != nil {
		r.sentry.RecordGenerationDuration(ctx, duration, planSource, success)
	}
	if r.cloudwatch != nil {
		r.cloudwatch.RecordGenerationDuration(duration, planSource, success)
	}
}

func (r *Recorder) TokenUsage(ctx context.Context, provider, model string, inputTokens, outputTokens int64) {
	if r == nil {
		return
	}
	if r.sentry != nil {
		r.sentry.RecordTokenUsage(ctx, provider, model, inputTokens, outputTokens)
	}
	if r.cloudwatch != nil {
		r.cloudwatch.RecordTokenUsage(model, inputTokens, outputTokens)
	}
}

func (r *Recorder) CacheHit(context.Context) {
	if r == nil || r.cloudwatch == nil {
		return
	}
	r.cloudwatch.RecordCount(MetricCacheHits, "hit")
}

func (r *Recorder) Fallback(ctx context.Context, reason string) {
	if r == nil {
		return
	}
	if r.sentry != nil {
		r.sentry.RecordGuidanceFallback(ctx, reason)
	}
	if r.cloudwatch != nil {
		r.cloudwatch.RecordCount(MetricGuidanceFallbacks, reason)
	}
}

func (r *Recorder) RateLimited(context.Context) {
	if r == nil || r.cloudwatch == nil {
		return
	}
	r.cloudwatch.RecordCount(MetricRateLimited, "limit")
}
