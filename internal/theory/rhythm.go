package theory

import "sort"

// RhythmTemplate defines timing and accent patterns within one 4/4 measure
type RhythmTemplate struct {
	Name string
	// Offsets within a bar (in beats, 0-4)
	Offsets []float64
	// Velocity multipliers for accents (1.0 = normal)
	Accents []float64
	// Duration multiplier (affects note length, 0.0-1.0)
	Articulation float64
}

// Accent returns the accent of the i-th onset, 1.0 when unspecified
func (t RhythmTemplate) Accent(i int) float64 {
	if i < len(t.Accents) {
		return t.Accents[i]
	}
	return 1.0
}

const (
	articulationFull    = 1.0
	articulationHigh    = 0.9
	articulationMidHigh = 0.85
)

var melodyTemplates = map[string]RhythmTemplate{
	"lyrical": {
		Name:         "lyrical",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.8, 0.9, 0.8},
		Articulation: articulationHigh,
	},
	"rubato": {
		Name:         "rubato",
		Offsets:      []float64{0, 1.5, 2, 3},
		Accents:      []float64{1.0, 0.75, 0.9, 0.8},
		Articulation: articulationFull,
	},
	"expressive": {
		Name:         "expressive",
		Offsets:      []float64{0, 1, 1.5, 2, 3, 3.5},
		Accents:      []float64{1.0, 0.8, 0.75, 0.95, 0.85, 0.75},
		Articulation: articulationMidHigh,
	},
	"nocturne": {
		Name:         "nocturne",
		Offsets:      []float64{0, 2, 2.5, 3, 3.5},
		Accents:      []float64{1.0, 0.9, 0.75, 0.8, 0.75},
		Articulation: articulationFull,
	},
	"song": {
		Name:         "song",
		Offsets:      []float64{0, 1, 2, 2.5, 3},
		Accents:      []float64{1.0, 0.8, 0.9, 0.75, 0.8},
		Articulation: articulationHigh,
	},
	"chorale": {
		Name:         "chorale",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.9, 0.95, 0.9},
		Articulation: articulationFull,
	},
	"gymnopedie": {
		Name:         "gymnopedie",
		Offsets:      []float64{0, 2},
		Accents:      []float64{1.0, 0.85},
		Articulation: articulationFull,
	},
}

// CadenceTemplate closes every section: two half notes on the strong beats
var CadenceTemplate = RhythmTemplate{
	Name:         "cadence",
	Offsets:      []float64{0, 2},
	Accents:      []float64{0.95, 0.85},
	Articulation: articulationFull,
}

// Feel ties a style rhythm tag to a melody rhythm and an accompaniment style
type Feel struct {
	Tag           string
	Melody        RhythmTemplate
	Accompaniment string
}

var feels = map[string]string{
	"rubato":     "bass-chord",
	"lyrical":    "broken",
	"expressive": "alberti",
	"nocturne":   "broken",
	"song":       "bass-chord",
	"chorale":    "block",
	"gymnopedie": "stride",
}

// DefaultRhythm is used when a section carries no rhythm tag
const DefaultRhythm = "lyrical"

// FeelFor returns the feel for a rhythm tag
func FeelFor(tag string) (Feel, bool) {
	if tag == "" {
		tag = DefaultRhythm
	}
	acc, ok := feels[tag]
	if !ok {
		return Feel{}, false
	}
	return Feel{Tag: tag, Melody: melodyTemplates[tag], Accompaniment: acc}, true
}

// RhythmTags lists every known rhythm tag, sorted
func RhythmTags() []string {
	tags := make([]string, 0, len(feels))
	for tag := range feels {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// IsStrongBeat reports whether a beat offset within a measure is 1 or 3
func IsStrongBeat(offsetInMeasure float64) bool {
	return offsetInMeasure == 0 || offsetInMeasure == 2
}
