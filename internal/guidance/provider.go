// Package guidance produces the structural plan of a piece: key, tempo and
// the per-section measure counts, harmonic templates and contours. Plans come
// from a remote model when one is configured and from local rules otherwise.
package guidance

import (
	"context"

	"github.com/resonata/resonata-api/internal/models"
)

// PlanInput is what a provider knows about a request
type PlanInput struct {
	Profile    *models.StyleProfile
	Mood       models.Mood
	Innovation float64
	Seed       *int64

	// Duration window the plan should land in
	MinSeconds float64
	MaxSeconds float64
}

// Provider produces a structural plan for one request
type Provider interface {
	Name() string
	Plan(ctx context.Context, in PlanInput) (*models.StructuralPlan, error)
}

// Observer receives planner events for counters and metrics
type Observer interface {
	CacheHit(ctx context.Context)
	Fallback(ctx context.Context, reason string)
	TokenUsage(ctx context.Context, provider, model string, inputTokens, outputTokens int64)
}

type nopObserver struct{}

func (nopObserver) CacheHit(context.Context)                                   {}
func (nopObserver) Fallback(context.Context, string)                           {}
func (nopObserver) TokenUsage(context.Context, string, string, int64, int64) {}
