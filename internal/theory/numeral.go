package theory

import (
	"fmt"
	"strings"

	"github.com/resonata/resonata-api/internal/models"
)

var romanDegrees = map[string]int{
	"I": 0, "II": 1, "III": 2, "IV": 3, "V": 4, "VI": 5, "VII": 6,
}

// Numeral is a parsed Roman-numeral chord symbol such as "iv", "V7", "bVI" or "vii°".
type Numeral struct {
	Text       string
	Degree     int // 0-based scale degree
	Accidental int // -1 flat, +1 sharp
	Upper      bool
	// Quality is set only when the symbol carries an explicit suffix
	Quality models.ChordQuality
	Seventh bool
}

// ParseNumeral parses a Roman numeral chord symbol
func ParseNumeral(s string) (Numeral, error) {
	text := strings.TrimSpace(s)
	n := Numeral{Text: text}
	rest := text

	switch {
	case strings.HasPrefix(rest, "b"):
		n.Accidental = -1
		rest = rest[1:]
	case strings.HasPrefix(rest, "#"):
		n.Accidental = 1
		rest = rest[1:]
	}

	end := 0
	for end < len(rest) && strings.ContainsRune("IViv", rune(rest[end])) {
		end++
	}
	roman := rest[:end]
	if roman == "" {
		return Numeral{}, fmt.Errorf("invalid numeral %q: no roman degree", s)
	}
	switch roman {
	case strings.ToUpper(roman):
		n.Upper = true
	case strings.ToLower(roman):
		n.Upper = false
	default:
		return Numeral{}, fmt.Errorf("invalid numeral %q: mixed case", s)
	}
	degree, ok := romanDegrees[strings.ToUpper(roman)]
	if !ok {
		return Numeral{}, fmt.Errorf("invalid numeral %q", s)
	}
	n.Degree = degree
	rest = rest[end:]

	switch {
	case strings.HasPrefix(rest, "°"):
		n.Quality = models.QualityDiminished
		rest = strings.TrimPrefix(rest, "°")
	case strings.HasPrefix(rest, "ø"):
		n.Quality = models.QualityDiminished
		n.Seventh = true
		rest = strings.TrimPrefix(rest, "ø")
	case strings.HasPrefix(rest, "dim"):
		n.Quality = models.QualityDiminished
		rest = rest[3:]
	case strings.HasPrefix(rest, "o"):
		n.Quality = models.QualityDiminished
		rest = rest[1:]
	case strings.HasPrefix(rest, "aug"):
		n.Quality = models.QualityAugmented
		rest = rest[3:]
	case strings.HasPrefix(rest, "+"):
		n.Quality = models.QualityAugmented
		rest = rest[1:]
	}

	if strings.HasPrefix(rest, "7") {
		n.Seventh = true
		rest = rest[1:]
	}
	if rest != "" {
		return Numeral{}, fmt.Errorf("invalid numeral %q: unexpected suffix %q", s, rest)
	}
	return n, nil
}

// Base returns the numeral without its seventh marker, used to look up
// profile quality preferences ("ii7" -> "ii").
func (n Numeral) Base() string {
	return strings.TrimSuffix(n.Text, "7")
}

// Candidates lists the qualities a numeral admits in key. Upper case is
// major, lower case minor, except that a lower-case numeral on a degree whose
// diatonic triad is diminished may be read either way.
func (n Numeral) Candidates(key Key) []models.ChordQuality {
	if n.Quality != "" {
		return []models.ChordQuality{n.Quality}
	}
	if n.Upper {
		return []models.ChordQuality{models.QualityMajor}
	}
	if n.Accidental == 0 && key.DiatonicQuality(n.Degree) == models.QualityDiminished {
		return []models.ChordQuality{models.QualityMinor, models.QualityDiminished}
	}
	return []models.ChordQuality{models.QualityMinor}
}

// Root returns the chord root pitch class in key for the resolved quality.
// In minor keys the diminished seventh-degree chord sits on the leading tone.
func (n Numeral) Root(key Key, quality models.ChordQuality) int {
	root := key.DegreeRoot(n.Degree) + n.Accidental
	if key.Mode == ModeMinor && n.Degree == 6 && n.Accidental == 0 && quality == models.QualityDiminished {
		root++
	}
	return Mod12(root)
}

// IsDominantFunction reports degrees that take a seventh at medium innovation
func (n Numeral) IsDominantFunction() bool {
	return n.Accidental == 0 && (n.Degree == 4 || n.Degree == 6 || n.Degree == 1)
}
