package texture

import (
	"fmt"
	"math"
	"sort"

	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/theory"
)

// HandSplit separates the hands: left below, right at or above
const HandSplit = 60

// accompanimentLevel keeps the left hand under the melody
const accompanimentLevel = 0.85

// Composer renders the left-hand accompaniment and joins it with the melody
type Composer struct {
	mood models.Mood
}

// NewComposer creates a texture composer for a request's mood
func NewComposer(mood models.Mood) *Composer {
	return &Composer{mood: mood}
}

type hit struct {
	beat     float64
	tones    toneSelect
	accent   float64
	arpIndex int
}

// Compose builds the two-hand section. Chords and melody carry start beats
// relative to the section; neither input is modified.
func (c *Composer) Compose(plan models.SectionPlan, chords []models.ChordEvent, melody []models.NoteEvent) (*models.Section, error) {
	feel, ok := theory.FeelFor(plan.RhythmTag)
	if !ok {
		return nil, fmt.Errorf("section %s: unknown rhythm %q", plan.Name, plan.RhythmTag)
	}
	pat, ok := patterns[feel.Accompaniment]
	if !ok {
		return nil, fmt.Errorf("section %s: unknown accompaniment %q", plan.Name, feel.Accompaniment)
	}
	dynamic := theory.SectionDynamic(plan.Name, c.mood)

	var left []models.ChordEvent
	for _, chord := range chords {
		hits := placeHits(pat, chord)
		for i, h := range hits {
			end := chord.EndBeats()
			if i+1 < len(hits) {
				end = hits[i+1].beat
			}
			ev := chord
			ev.StartBeats = h.beat
			ev.DurationBeats = end - h.beat
			ev.Voicing = pick(chord.Voicing, h.tones, h.arpIndex)
			ev.Extensions = append([]int(nil), chord.Extensions...)
			ev.PitchClasses = append([]int(nil), chord.PitchClasses...)
			ev.Velocity = theory.Velocity(dynamic, h.accent*accompanimentLevel)
			left = append(left, ev)
		}
	}

	right := append([]models.NoteEvent(nil), melody...)
	section := &models.Section{
		Plan:          plan,
		DurationBeats: plan.Beats(),
		Harmony:       cloneChords(chords),
		LeftHand:      left,
		RightHand:     right,
	}
	if err := Validate(section); err != nil {
		return nil, fmt.Errorf("section %s: %w", plan.Name, err)
	}
	return section, nil
}

func cloneChords(chords []models.ChordEvent) []models.ChordEvent {
	out := make([]models.ChordEvent, len(chords))
	for i, c := range chords {
		c.Voicing = append([]int(nil), c.Voicing...)
		c.PitchClasses = append([]int(nil), c.PitchClasses...)
		c.Extensions = append([]int(nil), c.Extensions...)
		out[i] = c
	}
	return out
}

// placeHits lays the pattern over every measure the chord touches and keeps
// the steps that fall inside it. A chord that starts between steps gets a
// hit on its first beat using the pattern's downbeat figure.
func placeHits(pat pattern, chord models.ChordEvent) []hit {
	start, end := chord.StartBeats, chord.EndBeats()
	first := int(math.Floor(start / models.BeatsPerMeasure))
	last := int(math.Ceil(end/models.BeatsPerMeasure)) - 1

	var hits []hit
	for m := first; m <= last; m++ {
		base := float64(m * models.BeatsPerMeasure)
		for _, s := range pat.steps {
			t := base + s.offset
			if t >= start && t < end {
				hits = append(hits, hit{beat: t, tones: s.tones, accent: s.accent})
			}
		}
	}
	if len(hits) == 0 || hits[0].beat > start {
		down := pat.steps[0]
		hits = append([]hit{{beat: start, tones: down.tones, accent: down.accent}}, hits...)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].beat < hits[j].beat })

	arp := 0
	for i := range hits {
		if hits[i].tones == toneArp {
			hits[i].arpIndex = arp
			arp++
		}
	}
	return hits
}

// Validate checks registral separation and that neither hand overlaps itself
func Validate(section *models.Section) error {
	for i, ev := range section.LeftHand {
		for _, p := range ev.Voicing {
			if p >= HandSplit {
				return fmt.Errorf("left hand pitch %d at beat %.2f crosses the hand split", p, ev.StartBeats)
			}
		}
		if i > 0 && section.LeftHand[i-1].EndBeats() > ev.StartBeats+1e-9 {
			return fmt.Errorf("left hand overlaps at beat %.2f", ev.StartBeats)
		}
	}
	for i, n := range section.RightHand {
		if n.MidiNoteNumber < HandSplit {
			return fmt.Errorf("right hand pitch %d at beat %.2f crosses the hand split", n.MidiNoteNumber, n.StartBeats)
		}
		if i > 0 && section.RightHand[i-1].EndBeats() > n.StartBeats+1e-9 {
			return fmt.Errorf("right hand overlaps at beat %.2f", n.StartBeats)
		}
	}
	return nil
}
