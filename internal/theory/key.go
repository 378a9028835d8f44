package theory

import (
	"fmt"
	"strings"

	"github.com/resonata/resonata-api/internal/models"
)

// Mode is major or minor
type Mode int

const (
	ModeMajor Mode = iota
	ModeMinor
)

func (m Mode) String() string {
	if m == ModeMinor {
		return "minor"
	}
	return "major"
}

var (
	majorScale = []int{0, 2, 4, 5, 7, 9, 11}
	minorScale = []int{0, 2, 3, 5, 7, 8, 10}

	majorTriads = []models.ChordQuality{
		models.QualityMajor, models.QualityMinor, models.QualityMinor, models.QualityMajor,
		models.QualityMajor, models.QualityMinor, models.QualityDiminished,
	}
	// Minor keys borrow the leading-tone triad from harmonic minor.
	minorTriads = []models.ChordQuality{
		models.QualityMinor, models.QualityDiminished, models.QualityMajor, models.QualityMinor,
		models.QualityMinor, models.QualityMajor, models.QualityDiminished,
	}
)

// Key is a tonic plus mode
type Key struct {
	Tonic int
	Mode  Mode
	Name  string
}

// ParseKey accepts "D minor", "C# minor", "Eb major", "Dm" and bare "F".
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Key{}, fmt.Errorf("invalid key %q", s)
	}

	tonicName := fields[0]
	mode := ModeMajor
	if len(fields) == 2 {
		switch strings.ToLower(fields[1]) {
		case "major", "maj":
			mode = ModeMajor
		case "minor", "min":
			mode = ModeMinor
		default:
			return Key{}, fmt.Errorf("invalid mode in key %q", s)
		}
	} else if strings.HasSuffix(tonicName, "m") && len(tonicName) > 1 {
		tonicName = strings.TrimSuffix(tonicName, "m")
		mode = ModeMinor
	}

	tonic, err := PitchClass(tonicName)
	if err != nil {
		return Key{}, fmt.Errorf("invalid tonic in key %q: %w", s, err)
	}
	name := strings.ToUpper(tonicName[:1]) + tonicName[1:] + " " + mode.String()
	return Key{Tonic: tonic, Mode: mode, Name: name}, nil
}

// Scale returns the key's diatonic pitch classes (natural minor for minor keys)
func (k Key) Scale() []int {
	base := majorScale
	if k.Mode == ModeMinor {
		base = minorScale
	}
	out := make([]int, len(base))
	for i, step := range base {
		out[i] = Mod12(k.Tonic + step)
	}
	return out
}

// InScale reports whether pitch is diatonic to the key
func (k Key) InScale(pitch int) bool {
	pc := Mod12(pitch)
	for _, s := range k.Scale() {
		if s == pc {
			return true
		}
	}
	return false
}

// DegreeRoot returns the pitch class of a 0-based scale degree
func (k Key) DegreeRoot(degree int) int {
	return k.Scale()[degree%7]
}

// DiatonicQuality returns the triad quality built on a 0-based degree
func (k Key) DiatonicQuality(degree int) models.ChordQuality {
	if k.Mode == ModeMinor {
		return minorTriads[degree%7]
	}
	return majorTriads[degree%7]
}

// Signature returns the SMF key signature: sharps (+) or flats (-) and the
// minor flag.
func (k Key) Signature() (sf int8, minor bool) {
	major := k.Tonic
	if k.Mode == ModeMinor {
		major = Mod12(k.Tonic + 3)
	}
	fifths := (major * 7) % 12
	if fifths > 6 {
		fifths -= 12
	}
	// Prefer the flat spelling for the enharmonic pair at six accidentals
	// when the key was named with a flat.
	if fifths == 6 && strings.Contains(k.Name, "b") {
		fifths = -6
	}
	return int8(fifths), k.Mode == ModeMinor
}

func (k Key) String() string {
	return k.Name
}
