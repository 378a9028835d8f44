package texture

// toneSelect chooses which voicing members sound at a step
type toneSelect int

const (
	toneAll   toneSelect = iota
	toneBass             // lowest voice
	toneUpper            // everything above the bass
	toneArp              // one voice, walking up and down the voicing
	toneLow              // alberti: bass
	toneHigh             // alberti: top voice
	toneMid              // alberti: the voice below the top
)

type step struct {
	offset float64
	tones  toneSelect
	accent float64
}

// pattern is an accompaniment figure for one 4/4 measure
type pattern struct {
	name  string
	steps []step
}

var patterns = map[string]pattern{
	"block": {
		name: "block",
		steps: []step{
			{0, toneAll, 1.0},
			{2, toneAll, 0.85},
		},
	},
	// bass on beat one, chord on beat three
	"bass-chord": {
		name: "bass-chord",
		steps: []step{
			{0, toneBass, 1.0},
			{2, toneUpper, 0.8},
		},
	},
	"broken": {
		name: "broken",
		steps: []step{
			{0, toneArp, 1.0}, {0.5, toneArp, 0.7}, {1, toneArp, 0.8}, {1.5, toneArp, 0.7},
			{2, toneArp, 0.9}, {2.5, toneArp, 0.7}, {3, toneArp, 0.8}, {3.5, toneArp, 0.7},
		},
	},
	"alberti": {
		name: "alberti",
		steps: []step{
			{0, toneLow, 1.0}, {0.5, toneHigh, 0.7}, {1, toneMid, 0.85}, {1.5, toneHigh, 0.7},
			{2, toneLow, 0.95}, {2.5, toneHigh, 0.7}, {3, toneMid, 0.85}, {3.5, toneHigh, 0.7},
		},
	},
	// stride: bass-chord-bass-chord
	"stride": {
		name: "stride",
		steps: []step{
			{0, toneBass, 1.0},
			{1, toneUpper, 0.8},
			{2, toneBass, 0.9},
			{3, toneUpper, 0.8},
		},
	},
}

// Styles lists the accompaniment styles the composer can render
func Styles() []string {
	return []string{"alberti", "bass-chord", "block", "broken", "stride"}
}

// pick returns the pitches a step plays from a voicing. arpIndex counts the
// arpeggio steps already played under the current chord.
func pick(voicing []int, sel toneSelect, arpIndex int) []int {
	n := len(voicing)
	if n == 0 {
		return nil
	}
	switch sel {
	case toneBass, toneLow:
		return []int{voicing[0]}
	case toneUpper:
		if n == 1 {
			return []int{voicing[0]}
		}
		return append([]int(nil), voicing[1:]...)
	case toneHigh:
		return []int{voicing[n-1]}
	case toneMid:
		if n < 3 {
			return []int{voicing[n-1]}
		}
		return []int{voicing[n-2]}
	case toneArp:
		if n == 1 {
			return []int{voicing[0]}
		}
		period := 2 * (n - 1)
		pos := arpIndex % period
		if pos >= n {
			pos = period - pos
		}
		return []int{voicing[pos]}
	default:
		return append([]int(nil), voicing...)
	}
}
