// Package services orchestrates a generation request across the pipeline
// packages and the stores that outlive it.
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/resonata/resonata-api/internal/guidance"
	"github.com/resonata/resonata-api/internal/harmony"
	"github.com/resonata/resonata-api/internal/logger"
	"github.com/resonata/resonata-api/internal/melody"
	"github.com/resonata/resonata-api/internal/metrics"
	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/notation"
	"github.com/resonata/resonata-api/internal/score"
	"github.com/resonata/resonata-api/internal/storage"
	"github.com/resonata/resonata-api/internal/style"
	"github.com/resonata/resonata-api/internal/texture"
	"github.com/resonata/resonata-api/internal/theory"
)

const defaultSectionWorkers = 4

// CompositionOptions wires a CompositionService. Pieces, Stats, History and
// Recorder are optional.
type CompositionOptions struct {
	Profiles  *style.Store
	Planner   *guidance.Planner
	Assembler *score.Assembler
	Pieces    *storage.PieceStore
	Stats     *storage.Stats
	History   HistoryRecorder
	Recorder  *metrics.Recorder
	Workers   int
}

// CompositionService turns a generation request into a stored MIDI piece
type CompositionService struct {
	opts CompositionOptions
	now  func() time.Time
}

func NewCompositionService(opts CompositionOptions) *CompositionService {
	if opts.Workers <= 0 {
		opts.Workers = defaultSectionWorkers
	}
	if opts.History == nil {
		opts.History = NopHistory{}
	}
	return &CompositionService{opts: opts, now: time.Now}
}

// Result is everything a caller needs to present or reproduce a piece
type Result struct {
	PieceID    string                 `json:"pieceId"`
	Seed       int64                  `json:"seed"`
	Plan       *models.StructuralPlan `json:"plan"`
	Score      *models.Score          `json:"score"`
	MIDI       []byte                 `json:"-"`
	PlanSource string                 `json:"planSource"`
	Elapsed    time.Duration          `json:"-"`
}

// Compose runs the full pipeline for one request
func (s *CompositionService) Compose(ctx context.Context, req models.GenerationRequest) (*Result, error) {
	started := s.now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Mood, _ = models.ParseMood(string(req.Mood))

	profile, err := s.opts.Profiles.Profile(req.ComposerID)
	if err != nil {
		return nil, err
	}

	seed := drawSeed(req.Seed)
	req.Seed = &seed
	band := theory.BandFor(req.InnovationLevel)
	fields := logger.Fields{
		"composer": profile.ComposerID,
		"mood":     string(req.Mood),
		"band":     band.String(),
		"seed":     seed,
	}
	logger.Info("Composition started", fields)

	result, err := s.compose(ctx, req, profile, seed)

	entry := &models.GenerationLog{
		ID:              uuid.New().String(),
		ClientID:        req.ClientID,
		Composer:        profile.ComposerID,
		Mood:            string(req.Mood),
		InnovationLevel: req.InnovationLevel,
		Band:            band.String(),
		Seed:            seed,
		ElapsedMs:       time.Since(started).Milliseconds(),
	}
	planSource := ""
	if err != nil {
		entry.Error = err.Error()
		logger.Warn("Composition failed", logger.Fields{
			"composer": profile.ComposerID,
			"mood":     string(req.Mood),
			"error":    err.Error(),
		})
	} else {
		entry.ID = result.PieceID
		entry.Key = result.Plan.Key
		entry.TempoBPM = result.Plan.TempoBPM
		entry.PlanSource = result.PlanSource
		entry.Sections = result.Plan.Sections
		entry.DurationSeconds = result.Score.DurationSeconds
		planSource = result.PlanSource
	}
	if herr := s.opts.History.Record(context.WithoutCancel(ctx), entry); herr != nil {
		logger.Warn("Failed to record generation history", logger.Fields{"error": herr.Error()})
	}
	s.opts.Recorder.Generation(ctx, time.Since(started), planSource, err == nil)
	if err != nil {
		return nil, err
	}

	if s.opts.Stats != nil {
		if serr := s.opts.Stats.Incr(ctx, storage.CounterGenerations); serr != nil {
			logger.Warn("Failed to update counter", logger.Fields{"error": serr.Error()})
		}
	}
	result.Elapsed = time.Since(started)
	logger.Info("Composition finished", logger.Fields{
		"composer":    profile.ComposerID,
		"piece_id":    result.PieceID,
		"plan_source": result.PlanSource,
		"duration_s":  result.Score.DurationSeconds,
		"elapsed_ms":  result.Elapsed.Milliseconds(),
	})
	return result, nil
}

func (s *CompositionService) compose(ctx context.Context, req models.GenerationRequest, profile *models.StyleProfile, seed int64) (*Result, error) {
	plan, err := s.opts.Planner.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := theory.ParseKey(plan.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrGenerationFailed, err)
	}

	composer := &sectionComposer{
		profile:    profile,
		key:        key,
		mood:       req.Mood,
		innovation: req.InnovationLevel,
		seed:       seed,
		workers:    s.opts.Workers,
	}
	sections, err := composer.ComposeAll(ctx, plan)
	if err != nil {
		return nil, err
	}

	piece, err := s.opts.Assembler.Assemble(ctx, plan, sections, composer.ComposeAll, score.Meta{
		Composer: profile.DisplayName,
		Mood:     req.Mood,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// the assembler may have resized the variation section
	final := *plan
	final.Sections = make([]models.SectionPlan, len(piece.Sections))
	for i, sec := range piece.Sections {
		final.Sections[i] = sec.Plan
	}
	plan = &final

	midi, err := notation.Encode(piece)
	if err != nil {
		return nil, fmt.Errorf("%w: encode midi: %w", models.ErrGenerationFailed, err)
	}

	result := &Result{
		PieceID:    uuid.New().String(),
		Seed:       seed,
		Plan:       plan,
		Score:      piece,
		MIDI:       midi,
		PlanSource: plan.Source,
	}
	if s.opts.Pieces != nil {
		stored := &models.Piece{
			ID:              result.PieceID,
			ClientID:        req.ClientID,
			Title:           piece.Title,
			Composer:        profile.ComposerID,
			Mood:            req.Mood,
			InnovationLevel: req.InnovationLevel,
			Seed:            seed,
			PlanSource:      plan.Source,
			DurationSeconds: piece.DurationSeconds,
			MIDI:            midi,
			CreatedAt:       s.now(),
		}
		if err := s.opts.Pieces.Save(ctx, stored); err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrGenerationFailed, err)
		}
	}
	return result, nil
}

// drawSeed keeps the caller's seed or draws a fresh non-negative one
func drawSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return rand.Int63()
}

// sectionComposer realizes every section of a plan. Harmony and texture run
// on a bounded errgroup; the melody runs in order because each section starts
// from the previous section's last pitch.
type sectionComposer struct {
	profile    *models.StyleProfile
	key        theory.Key
	mood       models.Mood
	innovation float64
	seed       int64
	workers    int
}

// ComposeAll matches score.ComposeFunc so the assembler can call it again
func (c *sectionComposer) ComposeAll(ctx context.Context, plan *models.StructuralPlan) ([]*models.Section, error) {
	n := len(plan.Sections)
	if n == 0 {
		return nil, fmt.Errorf("%w: plan has no sections", models.ErrGenerationFailed)
	}

	chords := make([][]models.ChordEvent, n)
	realizer := harmony.NewRealizer(c.profile)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, section := range plan.Sections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := realizer.Realize(section, c.key, c.innovation)
			if err != nil {
				return err
			}
			chords[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stageError("harmony", err)
	}

	melodies := make([][]models.NoteEvent, n)
	generator := melody.NewGenerator(c.key)
	previous := 0
	for i, section := range plan.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng := rand.New(rand.NewSource(c.seed + int64(i)))
		notes, err := generator.Generate(melody.Input{
			Section:    section,
			Chords:     chords[i],
			Innovation: c.innovation,
			Mood:       c.mood,
			Previous:   previous,
			Final:      i == n-1,
		}, rng)
		if err != nil {
			return nil, stageError("melody", err)
		}
		melodies[i] = notes
		if len(notes) > 0 {
			previous = notes[len(notes)-1].MidiNoteNumber
		}
	}

	sections := make([]*models.Section, n)
	tex := texture.NewComposer(c.mood)
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, section := range plan.Sections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := tex.Compose(section, chords[i], melodies[i])
			if err != nil {
				return err
			}
			sections[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stageError("texture", err)
	}
	return sections, nil
}

// stageError keeps context errors unwrapped and marks the rest as generation failures
func stageError(stage string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", models.ErrGenerationFailed, stage, err)
}
