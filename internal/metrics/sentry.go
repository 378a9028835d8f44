package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics records request and pipeline spans in Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics(enabled bool) *SentryMetrics {
	return &SentryMetrics{enabled: enabled}
}

// startSpan returns nil when Sentry is disabled
func (m *SentryMetrics) startSpan(ctx context.Context, op, description string) *sentry.Span {
	if m == nil || !m.enabled {
		return nil
	}
	span := sentry.StartSpan(ctx, op)
	span.Description = description
	return span
}

func finish(span *sentry.Span, ok bool) {
	if ok {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Finish()
}

// RecordAPIRequest records one HTTP request; 4xx and 5xx count as failures
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	span := m.startSpan(ctx, "api.request", "API Request: "+endpoint)
	if span == nil {
		return
	}
	ok := statusCode < 400
	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", strconv.Itoa(statusCode))
	span.SetTag("success", strconv.FormatBool(ok))
	span.SetData("duration_ms", duration.Milliseconds())
	finish(span, ok)
}

// RecordTokenUsage tags the current transaction with guidance token counts
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, provider, model string, inputTokens, outputTokens int64) {
	span := m.startSpan(ctx, "guidance.token_usage", "Token Usage: "+model)
	if span == nil {
		return
	}
	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("guidance.model", model)
		transaction.SetData("guidance.input_tokens", inputTokens)
		transaction.SetData("guidance.output_tokens", outputTokens)
	}
	span.SetTag("provider", provider)
	span.SetTag("model", model)
	span.SetData("input_tokens", inputTokens)
	span.SetData("output_tokens", outputTokens)
	finish(span, true)
}

// RecordGenerationDuration records one composition request
func (m *SentryMetrics) RecordGenerationDuration(ctx context.Context, duration time.Duration, planSource string, success bool) {
	span := m.startSpan(ctx, "generation.request", "Composition: "+planSource)
	if span == nil {
		return
	}
	span.SetTag("success", strconv.FormatBool(success))
	span.SetTag("plan_source", planSource)
	span.SetData("duration_ms", duration.Milliseconds())
	finish(span, success)
}

// RecordGuidanceFallback marks a request that planned locally
func (m *SentryMetrics) RecordGuidanceFallback(ctx context.Context, reason string) {
	span := m.startSpan(ctx, "guidance.fallback", "Guidance fallback: "+reason)
	if span == nil {
		return
	}
	span.SetTag("reason", reason)
	finish(span, true)
}
