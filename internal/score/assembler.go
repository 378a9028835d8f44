package score

import (
	"context"
	"fmt"
	"math"

	"github.com/resonata/resonata-api/internal/models"
)

// Transition rests, in beats, appended to a section before the next one
const (
	OpposedRest = 1.0 // descending into ascending or back
	StaticRest  = 0.5 // static next to a directional contour
)

// ComposeFunc composes every section of a plan; the assembler calls it again
// after stretching the variation section.
type ComposeFunc func(ctx context.Context, plan *models.StructuralPlan) ([]*models.Section, error)

// Meta names the piece
type Meta struct {
	Composer string
	Mood     models.Mood
}

// Assembler places sections on one timeline and enforces the duration window
type Assembler struct {
	minSeconds float64
	maxSeconds float64
}

// NewAssembler creates an assembler for the [minSeconds, maxSeconds] window
func NewAssembler(minSeconds, maxSeconds float64) *Assembler {
	return &Assembler{minSeconds: minSeconds, maxSeconds: maxSeconds}
}

// Window returns the accepted duration range in seconds
func (a *Assembler) Window() (float64, float64) {
	return a.minSeconds, a.maxSeconds
}

// Assemble joins the sections into a score. A piece outside the duration
// window gets one retry with the variation section resized; a second miss
// fails the request.
func (a *Assembler) Assemble(ctx context.Context, plan *models.StructuralPlan, sections []*models.Section, recompose ComposeFunc, meta Meta) (*models.Score, error) {
	score, err := a.place(plan, sections, meta)
	if err != nil {
		return nil, err
	}
	if a.inWindow(score.DurationSeconds) {
		return score, nil
	}

	stretched, err := a.Stretch(plan)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrGenerationFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sections, err = recompose(ctx, stretched)
	if err != nil {
		return nil, fmt.Errorf("recompose stretched plan: %w", err)
	}
	score, err = a.place(stretched, sections, meta)
	if err != nil {
		return nil, err
	}
	if !a.inWindow(score.DurationSeconds) {
		return nil, fmt.Errorf("%w: %w: %.1fs outside [%.0f, %.0f]", models.ErrGenerationFailed,
			models.ErrStructuralBounds, score.DurationSeconds, a.minSeconds, a.maxSeconds)
	}
	return score, nil
}

// Stretch returns a copy of plan whose variation section is resized so the
// piece lands at the centre of the window.
func (a *Assembler) Stretch(plan *models.StructuralPlan) (*models.StructuralPlan, error) {
	idx := -1
	for i, s := range plan.Sections {
		if s.Name == models.SectionVariation {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: no variation section to stretch", models.ErrStructuralBounds)
	}
	if plan.TempoBPM <= 0 {
		return nil, fmt.Errorf("%w: tempo must be positive", models.ErrStructuralBounds)
	}

	targetBeats := (a.minSeconds + a.maxSeconds) / 2 * float64(plan.TempoBPM) / 60
	otherBeats := TransitionBeats(plan.Sections)
	for i, s := range plan.Sections {
		if i != idx {
			otherBeats += s.Beats()
		}
	}
	measures := int(math.Round((targetBeats - otherBeats) / models.BeatsPerMeasure))
	if measures < 1 {
		return nil, fmt.Errorf("%w: other sections already exceed the window", models.ErrStructuralBounds)
	}

	out := *plan
	out.Sections = append([]models.SectionPlan(nil), plan.Sections...)
	out.Sections[idx].Measures = measures
	return &out, nil
}

// Rest returns the transition rest between two adjacent contours
func Rest(from, to models.Contour) float64 {
	switch {
	case from.Opposes(to):
		return OpposedRest
	case from == models.ContourStatic && directional(to), to == models.ContourStatic && directional(from):
		return StaticRest
	default:
		return 0
	}
}

// TransitionBeats sums the rests a plan's section order will produce
func TransitionBeats(sections []models.SectionPlan) float64 {
	total := 0.0
	for i := 0; i+1 < len(sections); i++ {
		total += Rest(sections[i].Contour, sections[i+1].Contour)
	}
	return total
}

// Seconds converts beats to seconds at tempo
func Seconds(beats float64, tempoBPM int) float64 {
	return beats * 60 / float64(tempoBPM)
}

func directional(c models.Contour) bool {
	return c == models.ContourAscending || c == models.ContourDescending
}

// Fits reports whether plan, as written, lands inside the duration window
func (a *Assembler) Fits(plan *models.StructuralPlan) bool {
	if plan.TempoBPM <= 0 {
		return false
	}
	return a.inWindow(Seconds(plan.TotalBeats()+TransitionBeats(plan.Sections), plan.TempoBPM))
}

func (a *Assembler) inWindow(seconds float64) bool {
	return seconds >= a.minSeconds-1e-9 && seconds <= a.maxSeconds+1e-9
}

// place offsets each section by the running total and returns new sections
func (a *Assembler) place(plan *models.StructuralPlan, sections []*models.Section, meta Meta) (*models.Score, error) {
	if len(sections) != len(plan.Sections) {
		return nil, fmt.Errorf("%w: %d sections composed for a %d-section plan", models.ErrGenerationFailed, len(sections), len(plan.Sections))
	}
	if plan.TempoBPM <= 0 {
		return nil, fmt.Errorf("%w: tempo must be positive", models.ErrGenerationFailed)
	}

	placed := make([]models.Section, len(sections))
	cursor := 0.0
	for i, s := range sections {
		rest := 0.0
		if i+1 < len(sections) {
			rest = Rest(s.Plan.Contour, sections[i+1].Plan.Contour)
		}
		placed[i] = shift(s, cursor, rest)
		cursor += placed[i].DurationBeats
	}

	return &models.Score{
		Title:           fmt.Sprintf("ReSonata: %s-inspired piece (%s)", meta.Composer, meta.Mood),
		Composer:        meta.Composer,
		Mood:            meta.Mood,
		Key:             plan.Key,
		TempoBPM:        plan.TempoBPM,
		Sections:        placed,
		TotalBeats:      cursor,
		DurationSeconds: Seconds(cursor, plan.TempoBPM),
	}, nil
}

func shift(s *models.Section, offset, rest float64) models.Section {
	out := models.Section{
		Plan:          s.Plan,
		StartBeats:    offset,
		DurationBeats: s.Plan.Beats() + rest,
		Harmony:       make([]models.ChordEvent, len(s.Harmony)),
		LeftHand:      make([]models.ChordEvent, len(s.LeftHand)),
		RightHand:     make([]models.NoteEvent, len(s.RightHand)),
	}
	for i, c := range s.Harmony {
		c.StartBeats += offset
		out.Harmony[i] = c
	}
	for i, c := range s.LeftHand {
		c.StartBeats += offset
		out.LeftHand[i] = c
	}
	for i, n := range s.RightHand {
		n.StartBeats += offset
		out.RightHand[i] = n
	}
	return out
}
