package models

// TempoRange bounds the tempo of a piece in BPM
type TempoRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Clamp returns bpm limited to the range
func (r TempoRange) Clamp(bpm int) int {
	if bpm < r.Min {
		return r.Min
	}
	if bpm > r.Max {
		return r.Max
	}
	return bpm
}

// StyleProfile captures the stylistic tendencies of one composer.
// Profiles are loaded once and shared read-only between requests.
type StyleProfile struct {
	ComposerID        string     `yaml:"id" json:"composerId"`
	DisplayName       string     `yaml:"name" json:"displayName"`
	Era               string     `yaml:"era" json:"era,omitempty"`
	TypicalKeys       []string   `yaml:"keys" json:"typicalKeys"`
	Tempo             TempoRange `yaml:"tempo" json:"tempoRange"`
	HarmonicTemplates [][]string `yaml:"harmonic_templates" json:"harmonicTemplates"`
	RhythmPatterns    []string   `yaml:"rhythm_patterns" json:"rhythmPatterns"`
	Contours          []Contour  `yaml:"contours" json:"contours"`
	Dynamics          []string   `yaml:"dynamics" json:"dynamics"`
	Characteristics   []string   `yaml:"characteristics" json:"characteristics,omitempty"`

	// QualityPreferences maps an ambiguous numeral (e.g. "ii") to the
	// quality the composer most often gave it.
	QualityPreferences map[string]ChordQuality `yaml:"quality_preferences" json:"qualityPreferences,omitempty"`
}

// HasContour reports whether c appears in the profile's contour list
func (p *StyleProfile) HasContour(c Contour) bool {
	for _, known := range p.Contours {
		if known == c {
			return true
		}
	}
	return false
}

// RhythmFor returns the rhythm tag for the i-th section
func (p *StyleProfile) RhythmFor(i int) string {
	if len(p.RhythmPatterns) == 0 {
		return ""
	}
	return p.RhythmPatterns[i%len(p.RhythmPatterns)]
}
