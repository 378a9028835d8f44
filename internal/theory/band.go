package theory

// Band is the discretized innovation level
type Band int

const (
	BandLow Band = iota
	BandMedium
	BandHigh
)

// Band boundaries; each lower bound is inclusive.
const (
	MediumThreshold = 0.33
	HighThreshold   = 0.66
)

// BandFor maps an innovation level in [0,1] to its band
func BandFor(level float64) Band {
	switch {
	case level < MediumThreshold:
		return BandLow
	case level < HighThreshold:
		return BandMedium
	default:
		return BandHigh
	}
}

func (b Band) String() string {
	switch b {
	case BandMedium:
		return "medium"
	case BandHigh:
		return "high"
	default:
		return "low"
	}
}

// MaxInterval is the widest melodic step allowed in semitones:
// a major third, a perfect fourth, or a major sixth.
func (b Band) MaxInterval() int {
	switch b {
	case BandMedium:
		return 5
	case BandHigh:
		return 9
	default:
		return 4
	}
}
