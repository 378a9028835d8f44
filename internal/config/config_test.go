package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GUIDANCE_TIMEOUT", "")
	t.Setenv("RATE_LIMIT_REQUESTS", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := Load()

	assert.Equal(t, 8*time.Second, cfg.GuidanceTimeout)
	assert.Equal(t, 20, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 30.0, cfg.MinPieceSeconds)
	assert.Equal(t, 45.0, cfg.MaxPieceSeconds)
	assert.Equal(t, time.Hour, cfg.PlanCacheTTL)
	assert.False(t, cfg.GuidanceEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GUIDANCE_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("MAX_PIECE_SECONDS", "50.5")
	t.Setenv("GUIDANCE_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "key")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.GuidanceTimeout)
	assert.Equal(t, 5, cfg.RateLimitRequests)
	assert.Equal(t, 50.5, cfg.MaxPieceSeconds)
	assert.True(t, cfg.GuidanceEnabled())
}

func TestInvalidNumbersFallBackToDefaults(t *testing.T) {
	t.Setenv("SECTION_WORKERS", "many")
	t.Setenv("PIECE_TTL", "forever")

	cfg := Load()

	assert.Equal(t, 4, cfg.SectionWorkers)
	assert.Equal(t, 24*time.Hour, cfg.PieceTTL)
}
