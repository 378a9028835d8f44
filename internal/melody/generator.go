package melody

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/theory"
)

// Right-hand register
const (
	RangeLow  = 60
	RangeHigh = 88

	// contour targets map into the singing middle of the register
	contourLow  = 65
	contourHigh = 83
)

// Leap sizes used by the high band's expressive leaps (5th to 6th, then 4th)
var (
	wideLeap   = [2]int{7, 9}
	narrowLeap = [2]int{5, 6}
)

// Input is everything the generator needs for one section
type Input struct {
	Section    models.SectionPlan
	Chords     []models.ChordEvent
	Innovation float64
	Mood       models.Mood
	// Previous is the last pitch of the preceding section, 0 at the start of a piece
	Previous int
	// Final marks the last section of the piece; its last note lands on the chord root
	Final bool
}

// Generator writes right-hand melodies in a key
type Generator struct {
	key theory.Key
}

// NewGenerator creates a melody generator for key
func NewGenerator(key theory.Key) *Generator {
	return &Generator{key: key}
}

type onset struct {
	beat    float64
	dur     float64
	accent  float64
	inBar   float64
	measure int
}

// Generate produces the section's melody. Start beats are relative to the
// section. rng is consulted only to break ties between equally good pitches.
func (g *Generator) Generate(in Input, rng *rand.Rand) ([]models.NoteEvent, error) {
	if len(in.Chords) == 0 {
		return nil, fmt.Errorf("section %s: no harmony to follow", in.Section.Name)
	}
	if !in.Section.Contour.Valid() {
		return nil, fmt.Errorf("section %s: unknown contour %q", in.Section.Name, in.Section.Contour)
	}
	feel, ok := theory.FeelFor(in.Section.RhythmTag)
	if !ok {
		return nil, fmt.Errorf("section %s: unknown rhythm %q", in.Section.Name, in.Section.RhythmTag)
	}

	band := theory.BandFor(in.Innovation)
	dynamic := theory.SectionDynamic(in.Section.Name, in.Mood)
	total := in.Section.Beats()
	onsets := rhythm(in.Section.Measures, feel.Melody)

	notes := make([]models.NoteEvent, 0, len(onsets))
	prev := in.Previous
	for i, o := range onsets {
		chord, ok := activeChord(in.Chords, o.beat)
		if !ok {
			return nil, fmt.Errorf("section %s: no chord at beat %.2f", in.Section.Name, o.beat)
		}
		strong := theory.IsStrongBeat(o.inBar)
		target := contourTarget(in.Section.Contour, o.beat/total, strong)
		last := i == len(onsets)-1
		if in.Final && o.measure == in.Section.Measures-1 {
			target = towardRoot(chord.Root, target)
		}

		var pitch int
		switch {
		case last && in.Final:
			pitch = g.cadence(chord, prev, band, target, rng)
		case band == theory.BandHigh && strong && o.inBar == 0 && o.measure%2 == 1 && prev != 0:
			pitch = g.leap(chord, prev, target, rng)
		default:
			pitch = g.choose(chord, prev, band, target, strong, in.Section.Contour, rng)
		}

		notes = append(notes, models.NoteEvent{
			MidiNoteNumber: pitch,
			Velocity:       theory.Velocity(dynamic, o.accent),
			StartBeats:     o.beat,
			DurationBeats:  o.dur,
			Hand:           models.HandRight,
			Dynamic:        dynamic,
		})
		prev = pitch
	}
	return notes, nil
}

// rhythm lays the melody template over every measure; the final measure
// closes on the cadence template. Each note lasts until the next onset,
// shortened by the template's articulation.
func rhythm(measures int, tmpl theory.RhythmTemplate) []onset {
	var out []onset
	for m := 0; m < measures; m++ {
		t := tmpl
		if m == measures-1 {
			t = theory.CadenceTemplate
		}
		base := float64(m * models.BeatsPerMeasure)
		for i, off := range t.Offsets {
			next := float64(models.BeatsPerMeasure)
			if i+1 < len(t.Offsets) {
				next = t.Offsets[i+1]
			}
			articulation := t.Articulation
			if articulation <= 0 || articulation > 1 {
				articulation = 1
			}
			out = append(out, onset{
				beat:    base + off,
				dur:     (next - off) * articulation,
				accent:  t.Accent(i),
				inBar:   off,
				measure: m,
			})
		}
	}
	return out
}

func activeChord(chords []models.ChordEvent, beat float64) (models.ChordEvent, bool) {
	for _, c := range chords {
		if beat >= c.StartBeats && beat < c.EndBeats() {
			return c, true
		}
	}
	return models.ChordEvent{}, false
}

// contourTarget maps section progress t in [0,1] to a target pitch. Static
// sections hover on one pitch and reach for the upper neighbour off the beat.
func contourTarget(c models.Contour, t float64, strong bool) float64 {
	var h float64
	switch c {
	case models.ContourDescending:
		h = 1 - t
	case models.ContourAscending:
		h = t
	case models.ContourArch:
		h = 1 - math.Abs(2*t-1)
	default:
		h = 0.5
	}
	target := contourLow + h*(contourHigh-contourLow)
	if c == models.ContourStatic && !strong {
		target += 2
	}
	return target
}

// pool returns the admissible pitch classes: chord tones on strong beats,
// chord tones plus the key's scale elsewhere.
func (g *Generator) pool(chord models.ChordEvent, strong bool) map[int]bool {
	pcs := make(map[int]bool, 12)
	for _, pc := range chord.PitchClasses {
		pcs[pc] = true
	}
	if !strong {
		for _, pc := range g.key.Scale() {
			pcs[pc] = true
		}
	}
	return pcs
}

func (g *Generator) choose(chord models.ChordEvent, prev int, band theory.Band, target float64, strong bool, contour models.Contour, rng *rand.Rand) int {
	pcs := g.pool(chord, strong)
	allowUnison := contour == models.ContourStatic

	var candidates []int
	for p := RangeLow; p <= RangeHigh; p++ {
		if !pcs[theory.Mod12(p)] {
			continue
		}
		if prev != 0 {
			d := abs(p - prev)
			if d > band.MaxInterval() || (d == 0 && !allowUnison) {
				continue
			}
		}
		candidates = append(candidates, p)
	}

	if len(candidates) == 0 && prev != 0 && pcs[theory.Mod12(prev)] {
		return prev
	}
	if len(candidates) == 0 {
		return nearestInPool(pcs, prev, target)
	}
	return nearest(candidates, target, rng)
}

// leap picks a chord tone a fifth to a sixth away in the contour's
// direction, trying the other direction and then a fourth before giving up
// on the leap.
func (g *Generator) leap(chord models.ChordEvent, prev int, target float64, rng *rand.Rand) int {
	dir := 1
	if target < float64(prev) {
		dir = -1
	}
	for _, span := range [][2]int{wideLeap, narrowLeap} {
		for _, d := range []int{dir, -dir} {
			var candidates []int
			for step := span[0]; step <= span[1]; step++ {
				p := prev + d*step
				if p >= RangeLow && p <= RangeHigh && chord.Contains(p) {
					candidates = append(candidates, p)
				}
			}
			if len(candidates) > 0 {
				return nearest(candidates, target, rng)
			}
		}
	}
	return g.choose(chord, prev, theory.BandHigh, target, true, models.ContourArch, rng)
}

// cadence ends the piece on the chord root when it is reachable
func (g *Generator) cadence(chord models.ChordEvent, prev int, band theory.Band, target float64, rng *rand.Rand) int {
	best := 0
	for p := RangeLow; p <= RangeHigh; p++ {
		if theory.Mod12(p) != chord.Root {
			continue
		}
		if prev != 0 && abs(p-prev) > band.MaxInterval() {
			continue
		}
		if best == 0 || math.Abs(float64(p)-target) < math.Abs(float64(best)-target) {
			best = p
		}
	}
	if best == 0 {
		return g.choose(chord, prev, band, target, true, models.ContourStatic, rng)
	}
	return best
}

// towardRoot moves target onto the nearest in-range pitch of the root
func towardRoot(root int, target float64) float64 {
	return float64(nearestInPool(map[int]bool{root: true}, 0, target))
}

// nearest returns the candidate closest to target; ties go to rng
func nearest(candidates []int, target float64, rng *rand.Rand) int {
	bestDist := math.Inf(1)
	var ties []int
	for _, p := range candidates {
		d := math.Abs(float64(p) - target)
		switch {
		case d < bestDist-1e-9:
			bestDist = d
			ties = append(ties[:0], p)
		case math.Abs(d-bestDist) <= 1e-9:
			ties = append(ties, p)
		}
	}
	if len(ties) == 1 || rng == nil {
		return ties[0]
	}
	return ties[rng.Intn(len(ties))]
}

// nearestInPool ignores the interval limit and returns the in-range pitch
// from pcs closest to prev (or to target when there is no previous note).
func nearestInPool(pcs map[int]bool, prev int, target float64) int {
	ref := target
	if prev != 0 {
		ref = float64(prev)
	}
	best := 0
	for p := RangeLow; p <= RangeHigh; p++ {
		if !pcs[theory.Mod12(p)] {
			continue
		}
		if best == 0 || math.Abs(float64(p)-ref) < math.Abs(float64(best)-ref) {
			best = p
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
