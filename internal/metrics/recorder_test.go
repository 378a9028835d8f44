package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientDisabledOutsideProduction(t *testing.T) {
	c, err := NewClient(context.Background(), "development", true)
	require.NoError(t, err)
	assert.False(t, c.enabled)

	c, err = NewClient(context.Background(), "production", false)
	require.NoError(t, err)
	assert.False(t, c.enabled)
}

func TestRecorderIsSafeWhenDisabled(t *testing.T) {
	ctx := context.Background()
	cw, err := NewClient(ctx, "test", false)
	require.NoError(t, err)

	for _, r := range []*Recorder{nil, NewRecorder(nil, nil), NewRecorder(NewSentryMetrics(false), cw)} {
		assert.NotPanics(t, func() {
			r.APIRequest(ctx, "/api/generate", 200, time.Millisecond)
			r.Generation(ctx, time.Second, "local", true)
			r.TokenUsage(ctx, "openai", "gpt-5-mini", 10, 20)
			r.CacheHit(ctx)
			r.Fallback(ctx, "timeout")
			r.RateLimited(ctx)
		})
	}
}

func TestDimensionsCarryEnvironment(t *testing.T) {
	c := &Client{environment: "staging"}
	dims := c.dimensions("Endpoint", "/api/generate")
	require.Len(t, dims, 2)
	assert.Equal(t, "Endpoint", *dims[0].Name)
	assert.Equal(t, "/api/generate", *dims[0].Value)
	assert.Equal(t, "staging", *dims[1].Value)

	d := datum("APILatency", 12, "Milliseconds", dims)
	assert.Equal(t, "APILatency", *d.MetricName)
	assert.Equal(t, 12.0, *d.Value)
}
