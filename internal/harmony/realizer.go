package harmony

import (
	"fmt"
	"math"
	"sort"

	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/theory"
)

// Left-hand register for realized voicings
const (
	BassLow   = 36 // C2
	BassHigh  = 48 // exclusive
	HandSplit = 60 // every left-hand pitch stays below middle C
)

// MaxChordsPerMeasure bounds the harmonic rhythm (half-beat grid)
const MaxChordsPerMeasure = 8

// Realizer turns Roman-numeral templates into concrete chord events
type Realizer struct {
	profile *models.StyleProfile
}

// NewRealizer creates a realizer that resolves ambiguous numerals with the
// profile's quality preferences.
func NewRealizer(profile *models.StyleProfile) *Realizer {
	return &Realizer{profile: profile}
}

type slot struct {
	numeral int
	start   float64
	dur     float64
}

// Realize produces one ChordEvent per harmonic slot of the section, with
// start beats relative to the section start.
func (r *Realizer) Realize(section models.SectionPlan, key theory.Key, innovation float64) ([]models.ChordEvent, error) {
	if section.Measures <= 0 {
		return nil, fmt.Errorf("section %s: measure count must be positive", section.Name)
	}
	if len(section.HarmonicTemplate) == 0 {
		return nil, fmt.Errorf("section %s: empty harmonic template", section.Name)
	}

	numerals := make([]theory.Numeral, len(section.HarmonicTemplate))
	for i, text := range section.HarmonicTemplate {
		n, err := theory.ParseNumeral(text)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", section.Name, err)
		}
		numerals[i] = n
	}

	slots, err := layout(len(numerals), section.Measures)
	if err != nil {
		return nil, fmt.Errorf("section %s: %w", section.Name, err)
	}

	band := theory.BandFor(innovation)
	chords := make([]models.ChordEvent, len(slots))
	for i, s := range slots {
		n := numerals[s.numeral]
		quality := r.resolveQuality(n, key)
		last := i == len(slots)-1

		extensions := extensionsFor(band, n, quality, i)
		intervals := theory.TriadIntervals(quality)
		for _, ext := range extensions {
			if ext == 7 {
				intervals = append(intervals, theory.SeventhInterval(n, key, quality))
			} else {
				intervals = append(intervals, theory.ExtensionInterval(ext))
			}
		}

		root := n.Root(key, quality)
		pcs := theory.ChordPitchClasses(root, intervals)
		chordTones := len(pcs) - countAbove7(extensions)
		inversion := inversionFor(band, i, chordTones, last)

		chords[i] = models.ChordEvent{
			Numeral:       n.Text,
			StartBeats:    s.start,
			DurationBeats: s.dur,
			Root:          root,
			Quality:       quality,
			Extensions:    extensions,
			Inversion:     inversion,
			PitchClasses:  pcs,
			Voicing:       Voice(pcs, inversion),
		}
	}
	return chords, nil
}

// resolveQuality picks a single quality for the numeral. An explicit suffix
// or the numeral's case decides; a remaining ambiguity goes to the profile's
// preference, then to the fixed priority order.
func (r *Realizer) resolveQuality(n theory.Numeral, key theory.Key) models.ChordQuality {
	candidates := n.Candidates(key)
	if len(candidates) == 1 {
		return candidates[0]
	}
	if r.profile != nil {
		if pref, ok := r.profile.QualityPreferences[n.Base()]; ok && containsQuality(candidates, pref) {
			return pref
		}
	}
	for _, q := range models.QualityPriority {
		if containsQuality(candidates, q) {
			return q
		}
	}
	return candidates[0]
}

func containsQuality(list []models.ChordQuality, q models.ChordQuality) bool {
	for _, c := range list {
		if c == q {
			return true
		}
	}
	return false
}

// extensionsFor returns the extensions (7, 9, 11) for the i-th chord
func extensionsFor(band theory.Band, n theory.Numeral, quality models.ChordQuality, i int) []int {
	switch band {
	case theory.BandLow:
		return nil
	case theory.BandMedium:
		if n.Seventh || n.IsDominantFunction() {
			return []int{7}
		}
		return nil
	}

	switch i % 3 {
	case 0:
		return []int{7, 9}
	case 1:
		if quality == models.QualityMinor || quality == models.QualityDiminished {
			return []int{7, 9, 11}
		}
		return []int{7, 9}
	default:
		return []int{7}
	}
}

func countAbove7(extensions []int) int {
	count := 0
	for _, e := range extensions {
		if e > 7 {
			count++
		}
	}
	return count
}

// inversionFor keeps the final chord in root position. Low and medium bands
// use first inversion on interior odd positions; the high band cycles
// through every inversion the chord allows.
func inversionFor(band theory.Band, i, chordTones int, last bool) int {
	if last || i == 0 {
		return 0
	}
	if band == theory.BandHigh {
		return i % chordTones
	}
	if i%2 == 1 {
		return 1
	}
	return 0
}

// Voice places the chord in the left-hand register: the inverted bass in
// [BassLow, BassHigh) and the remaining members stacked in close position
// above it, folded down an octave whenever they would reach HandSplit.
func Voice(pcs []int, inversion int) []int {
	if len(pcs) == 0 {
		return nil
	}
	bassPC := pcs[inversion%len(pcs)]
	bass := BassLow + theory.Mod12(bassPC-BassLow)

	voicing := []int{bass}
	used := map[int]bool{bass: true}
	prev := bass
	for k := 1; k < len(pcs); k++ {
		pc := pcs[(inversion+k)%len(pcs)]
		step := theory.Mod12(pc - prev)
		if step == 0 {
			step = 12
		}
		pitch := prev + step
		for pitch >= HandSplit {
			pitch -= 12
		}
		if pitch <= bass || used[pitch] {
			continue
		}
		used[pitch] = true
		voicing = append(voicing, pitch)
		prev = pitch
	}
	sort.Ints(voicing)
	return voicing
}

// layout distributes n chords over m measures. With no more chords than
// measures each chord takes whole measures; otherwise the section is split
// evenly on a one-beat grid, or a half-beat grid when chords outnumber beats.
func layout(n, measures int) ([]slot, error) {
	beats := measures * models.BeatsPerMeasure
	if n > measures*MaxChordsPerMeasure {
		return nil, fmt.Errorf("%d chords do not fit in %d measures", n, measures)
	}

	if n <= measures {
		var slots []slot
		for m := 0; m < measures; m++ {
			idx := m * n / measures
			start := float64(m * models.BeatsPerMeasure)
			if len(slots) > 0 && slots[len(slots)-1].numeral == idx {
				slots[len(slots)-1].dur += models.BeatsPerMeasure
				continue
			}
			slots = append(slots, slot{numeral: idx, start: start, dur: models.BeatsPerMeasure})
		}
		return slots, nil
	}

	grid := 1.0
	if n > beats {
		grid = 0.5
	}
	starts := make([]float64, n+1)
	for i := 0; i < n; i++ {
		starts[i] = math.Floor(float64(i)*float64(beats)/float64(n)/grid) * grid
	}
	starts[n] = float64(beats)

	slots := make([]slot, n)
	for i := 0; i < n; i++ {
		slots[i] = slot{numeral: i, start: starts[i], dur: starts[i+1] - starts[i]}
	}
	return slots, nil
}
