package guidance

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/resonata/resonata-api/internal/harmony"
	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/score"
	"github.com/resonata/resonata-api/internal/theory"
)

// RuleBasedProvider plans locally from the style profile and the mood table.
// It never fails for a valid profile, so it backs every remote failure.
type RuleBasedProvider struct {
	now func() time.Time
}

func NewRuleBasedProvider() *RuleBasedProvider {
	return &RuleBasedProvider{now: time.Now}
}

func (p *RuleBasedProvider) Name() string {
	return models.PlanSourceLocal
}

// Plan builds a four-section plan sized to the middle of the duration window
func (p *RuleBasedProvider) Plan(ctx context.Context, in PlanInput) (*models.StructuralPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prof := in.Profile
	if prof == nil {
		return nil, fmt.Errorf("rule-based plan: profile is required")
	}
	if len(prof.TypicalKeys) == 0 || len(prof.HarmonicTemplates) == 0 {
		return nil, fmt.Errorf("rule-based plan: profile %s has no keys or templates", prof.ComposerID)
	}

	rng := rand.New(rand.NewSource(planSeed(in)))
	shape := shapeFor(in.Mood)

	key, err := theory.ParseKey(prof.TypicalKeys[rng.Intn(len(prof.TypicalKeys))])
	if err != nil {
		return nil, fmt.Errorf("rule-based plan: %w", err)
	}
	span := float64(prof.Tempo.Max - prof.Tempo.Min)
	tempo := prof.Tempo.Clamp(prof.Tempo.Min + int(math.Round(shape.TempoPosition*span)))

	sections := make([]models.SectionPlan, len(models.SectionOrder))
	for i, name := range models.SectionOrder {
		sections[i] = models.SectionPlan{
			Name:      name,
			Contour:   contourFor(prof, shape, i),
			RhythmTag: prof.RhythmFor(i),
		}
	}
	sizeSections(sections, tempo, in.MinSeconds, in.MaxSeconds)

	next := shape.TemplateOffset
	for i := range sections {
		sections[i].HarmonicTemplate, next = pickTemplate(prof.HarmonicTemplates, next, sections[i].Measures)
	}

	return &models.StructuralPlan{
		Key:       key.String(),
		TempoBPM:  tempo,
		Sections:  sections,
		Source:    models.PlanSourceLocal,
		CreatedAt: p.now(),
	}, nil
}

// planSeed uses the request seed, else a stable hash of composer and mood
func planSeed(in PlanInput) int64 {
	if in.Seed != nil {
		return *in.Seed
	}
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(in.Profile.ComposerID) + "|" + string(in.Mood)))
	return int64(h.Sum64())
}

func contourFor(prof *models.StyleProfile, shape moodShape, i int) models.Contour {
	c := shape.Contours[i%len(shape.Contours)]
	if len(prof.Contours) == 0 || prof.HasContour(c) {
		return c
	}
	return prof.Contours[i%len(prof.Contours)]
}

// sizeSections splits the centre of the window into intro 1/6, theme 1/3,
// resolution 1/6 and the variation taking the rest.
func sizeSections(sections []models.SectionPlan, tempo int, minSeconds, maxSeconds float64) {
	targetBeats := (minSeconds+maxSeconds)/2*float64(tempo)/60 - score.TransitionBeats(sections)
	total := int(math.Round(targetBeats / models.BeatsPerMeasure))

	share := func(f float64) int {
		return max(1, int(math.Round(float64(total)*f)))
	}
	intro, theme, resolution := share(1.0/6), share(1.0/3), share(1.0/6)
	variation := max(1, total-intro-theme-resolution)

	for i := range sections {
		switch sections[i].Name {
		case models.SectionIntro:
			sections[i].Measures = intro
		case models.SectionTheme:
			sections[i].Measures = theme
		case models.SectionVariation:
			sections[i].Measures = variation
		case models.SectionResolution:
			sections[i].Measures = resolution
		}
	}
}

// pickTemplate returns the first template from start that fits in measures,
// and the index to continue the cycle from.
func pickTemplate(templates [][]string, start, measures int) ([]string, int) {
	limit := measures * harmony.MaxChordsPerMeasure
	n := len(templates)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if len(templates[idx]) <= limit {
			return append([]string(nil), templates[idx]...), idx + 1
		}
	}
	t := templates[start%n]
	return append([]string(nil), t[:limit]...), start + 1
}
