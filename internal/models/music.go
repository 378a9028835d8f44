package models

// Hand identifies which hand of the pianist plays an event
type Hand string

const (
	HandRight Hand = "right"
	HandLeft  Hand = "left"
)

// Contour is the melodic shape of a section
type Contour string

const (
	ContourDescending Contour = "descending"
	ContourAscending  Contour = "ascending"
	ContourArch       Contour = "arch"
	ContourStatic     Contour = "static"
)

// Valid reports whether c is one of the known contour shapes
func (c Contour) Valid() bool {
	switch c {
	case ContourDescending, ContourAscending, ContourArch, ContourStatic:
		return true
	}
	return false
}

// Opposes reports whether c and other move in opposite directions
func (c Contour) Opposes(other Contour) bool {
	return (c == ContourDescending && other == ContourAscending) ||
		(c == ContourAscending && other == ContourDescending)
}

// ChordQuality is the triad quality of a chord
type ChordQuality string

const (
	QualityMajor      ChordQuality = "major"
	QualityMinor      ChordQuality = "minor"
	QualityDiminished ChordQuality = "diminished"
	QualityAugmented  ChordQuality = "augmented"
)

// QualityPriority is the fixed tie-break order used when a numeral admits
// more than one quality and the style profile expresses no preference.
var QualityPriority = []ChordQuality{QualityMajor, QualityMinor, QualityDiminished, QualityAugmented}

// NoteEvent represents a single melody note with timing and pitch information
type NoteEvent struct {
	MidiNoteNumber int     `json:"midiNoteNumber"`
	Velocity       int     `json:"velocity"`
	StartBeats     float64 `json:"startBeats"`
	DurationBeats  float64 `json:"durationBeats"`
	Hand           Hand    `json:"hand"`
	Dynamic        string  `json:"dynamic,omitempty"`
}

// EndBeats returns the beat at which the note releases
func (n NoteEvent) EndBeats() float64 {
	return n.StartBeats + n.DurationBeats
}

// ChordEvent represents a realized harmony with timing information.
// Voicing holds the sounding MIDI numbers; PitchClasses the chord members
// (root first, extensions included) independent of octave.
type ChordEvent struct {
	Numeral       string       `json:"numeral"`
	StartBeats    float64      `json:"startBeats"`
	DurationBeats float64      `json:"durationBeats"`
	Root          int          `json:"root"`
	Quality       ChordQuality `json:"quality"`
	Extensions    []int        `json:"extensions,omitempty"`
	Inversion     int          `json:"inversion"`
	PitchClasses  []int        `json:"pitchClasses"`
	Voicing       []int        `json:"voicing"`
	Velocity      int          `json:"velocity,omitempty"`
}

// EndBeats returns the beat at which the chord releases
func (c ChordEvent) EndBeats() float64 {
	return c.StartBeats + c.DurationBeats
}

// Contains reports whether pitch belongs to the chord as a pitch class
func (c ChordEvent) Contains(pitch int) bool {
	pc := ((pitch % 12) + 12) % 12
	for _, member := range c.PitchClasses {
		if member == pc {
			return true
		}
	}
	return false
}

// HasExtension reports whether the chord carries the given extension (7, 9, 11)
func (c ChordEvent) HasExtension(ext int) bool {
	for _, e := range c.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
