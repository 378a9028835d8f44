package models

import (
	"fmt"
	"strings"
	"time"
)

// Mood is the listener-facing emotional parameter of a request
type Mood string

const (
	MoodMelancholic Mood = "melancholic"
	MoodNostalgic   Mood = "nostalgic"
	MoodSerene      Mood = "serene"
	MoodHopeful     Mood = "hopeful"
	MoodDramatic    Mood = "dramatic"
	MoodPassionate  Mood = "passionate"
)

// Moods lists every accepted mood in display order
var Moods = []Mood{MoodMelancholic, MoodNostalgic, MoodSerene, MoodHopeful, MoodDramatic, MoodPassionate}

// ParseMood normalizes and validates a mood string
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Moods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mood %q", ErrInvalidRequest, s)
}

// GenerationRequest wraps the listener's generation parameters
type GenerationRequest struct {
	ComposerID      string  `json:"composer"`
	Mood            Mood    `json:"mood"`
	InnovationLevel float64 `json:"innovationLevel"`
	Seed            *int64  `json:"seed,omitempty"` // Optional seed for reproducibility

	// ClientID identifies the caller for rate limiting and piece storage.
	ClientID string `json:"-"`
}

// Validate checks the request parameters that do not need the profile store
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.ComposerID) == "" {
		return fmt.Errorf("%w: composer is required", ErrInvalidRequest)
	}
	if _, err := ParseMood(string(r.Mood)); err != nil {
		return err
	}
	// written so NaN fails too
	if !(r.InnovationLevel >= 0 && r.InnovationLevel <= 1) {
		return fmt.Errorf("%w: innovationLevel must be within [0, 1], got %v", ErrInvalidRequest, r.InnovationLevel)
	}
	return nil
}

// SectionName names a formal section of the piece
type SectionName string

const (
	SectionIntro      SectionName = "intro"
	SectionTheme      SectionName = "theme"
	SectionVariation  SectionName = "variation"
	SectionResolution SectionName = "resolution"
)

// SectionOrder is the canonical order of sections in a piece
var SectionOrder = []SectionName{SectionIntro, SectionTheme, SectionVariation, SectionResolution}

// SectionPlan describes one section before any notes exist
type SectionPlan struct {
	Name             SectionName `json:"name"`
	Measures         int         `json:"measureCount"`
	HarmonicTemplate []string    `json:"harmonicTemplate"`
	Contour          Contour     `json:"contourTag"`
	RhythmTag        string      `json:"rhythmTag,omitempty"`
}

// Beats returns the section length in beats (4/4)
func (s SectionPlan) Beats() float64 {
	return float64(s.Measures * BeatsPerMeasure)
}

// BeatsPerMeasure is fixed: every piece is in common time
const BeatsPerMeasure = 4

// Plan sources
const (
	PlanSourceCache = "cache"
	PlanSourceLocal = "local"
)

// StructuralPlan is the high-level shape of a piece
type StructuralPlan struct {
	Key       string        `json:"key"`
	TempoBPM  int           `json:"tempoBPM"`
	Sections  []SectionPlan `json:"sections"`
	Source    string        `json:"source"`
	CreatedAt time.Time     `json:"createdAt"`
}

// TotalBeats sums the section lengths without transition rests
func (p StructuralPlan) TotalBeats() float64 {
	total := 0.0
	for _, s := range p.Sections {
		total += s.Beats()
	}
	return total
}

// Section is a fully composed section placed on the piece timeline
type Section struct {
	Plan          SectionPlan  `json:"plan"`
	StartBeats    float64      `json:"startBeats"`
	DurationBeats float64      `json:"durationBeats"`
	Harmony       []ChordEvent `json:"harmony"`
	LeftHand      []ChordEvent `json:"leftHand"`
	RightHand     []NoteEvent  `json:"rightHand"`
}

// Score is the complete multi-section piece
type Score struct {
	Title           string    `json:"title"`
	Composer        string    `json:"composer"`
	Mood            Mood      `json:"mood"`
	Key             string    `json:"key"`
	TempoBPM        int       `json:"tempoBPM"`
	Sections        []Section `json:"sections"`
	TotalBeats      float64   `json:"totalBeats"`
	DurationSeconds float64   `json:"durationSeconds"`
}

// Piece is a rendered score kept for later download
type Piece struct {
	ID              string    `json:"id" msgpack:"id"`
	ClientID        string    `json:"-" msgpack:"client_id"`
	Title           string    `json:"title" msgpack:"title"`
	Composer        string    `json:"composer" msgpack:"composer"`
	Mood            Mood      `json:"mood" msgpack:"mood"`
	InnovationLevel float64   `json:"innovationLevel" msgpack:"innovation"`
	Seed            int64     `json:"seed" msgpack:"seed"`
	PlanSource      string    `json:"planSource" msgpack:"plan_source"`
	DurationSeconds float64   `json:"durationSeconds" msgpack:"duration"`
	MIDI            []byte    `json:"-" msgpack:"midi"`
	CreatedAt       time.Time `json:"createdAt" msgpack:"created_at"`
}
