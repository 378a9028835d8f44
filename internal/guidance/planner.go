package guidance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resonata/resonata-api/internal/logger"
	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/storage"
	"github.com/resonata/resonata-api/internal/style"
	"github.com/resonata/resonata-api/internal/theory"
)

// Fallback reasons reported to the observer
const (
	ReasonUnavailable = "unavailable"
	ReasonInvalid     = "invalid_payload"
	ReasonDisabled    = "disabled"
)

// PlannerOptions configures a Planner
type PlannerOptions struct {
	Profiles *style.Store
	Cache    *storage.PlanCache // nil disables caching
	Remote   Provider           // nil means local planning only
	Local    Provider           // defaults to the rule-based provider
	Observer Observer
	Timeout  time.Duration

	MinSeconds float64
	MaxSeconds float64
}

// Planner resolves the plan for a request: cache, then the remote provider
// under a timeout, then local rules.
type Planner struct {
	opts PlannerOptions
}

func NewPlanner(opts PlannerOptions) *Planner {
	if opts.Local == nil {
		opts.Local = NewRuleBasedProvider()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Planner{opts: opts}
}

// Plan returns the structural plan for req. Only an unknown composer or a
// cancelled context is surfaced; guidance problems fall back to local rules.
func (p *Planner) Plan(ctx context.Context, req models.GenerationRequest) (*models.StructuralPlan, error) {
	profile, err := p.opts.Profiles.Profile(req.ComposerID)
	if err != nil {
		return nil, err
	}
	in := PlanInput{
		Profile:    profile,
		Mood:       req.Mood,
		Innovation: req.InnovationLevel,
		Seed:       req.Seed,
		MinSeconds: p.opts.MinSeconds,
		MaxSeconds: p.opts.MaxSeconds,
	}
	band := theory.BandFor(req.InnovationLevel)
	fields := logger.Fields{
		"composer": profile.ComposerID,
		"mood":     string(req.Mood),
		"band":     band.String(),
	}

	key := storage.PlanKey(profile.ComposerID, req.Mood, band)
	if p.opts.Cache != nil {
		cached, err := p.opts.Cache.Get(ctx, key)
		if err != nil {
			logger.Warn("Plan cache read failed, treating as miss", logger.Fields{
				"composer": profile.ComposerID,
				"error":    err.Error(),
			})
		} else if cached != nil {
			cached.Source = models.PlanSourceCache
			p.opts.Observer.CacheHit(ctx)
			logger.Debug("Plan cache hit", fields)
			return cached, nil
		}
	}

	plan, reason, err := p.remote(ctx, in)
	if err == nil {
		if p.opts.Cache != nil {
			if cerr := p.opts.Cache.Set(ctx, key, plan); cerr != nil {
				logger.Warn("Plan cache write failed", logger.Fields{"error": cerr.Error()})
			}
		}
		return plan, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if reason != ReasonDisabled {
		logger.Warn("Guidance failed, planning locally", logger.Fields{
			"composer": profile.ComposerID,
			"mood":     string(req.Mood),
			"band":     band.String(),
			"reason":   reason,
			"error":    err.Error(),
		})
	}
	p.opts.Observer.Fallback(ctx, reason)

	plan, err = p.opts.Local.Plan(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%w: local plan: %w", models.ErrGenerationFailed, err)
	}
	return plan, nil
}

func (p *Planner) remote(ctx context.Context, in PlanInput) (*models.StructuralPlan, string, error) {
	if p.opts.Remote == nil {
		return nil, ReasonDisabled, fmt.Errorf("%w: no remote provider configured", models.ErrGuidanceUnavailable)
	}

	callCtx := ctx
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	plan, err := p.opts.Remote.Plan(callCtx, in)
	switch {
	case err == nil:
		return plan, "", nil
	case errors.Is(err, models.ErrInvalidGuidancePayload):
		return nil, ReasonInvalid, err
	default:
		return nil, ReasonUnavailable, err
	}
}
