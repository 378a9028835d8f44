package theory

import (
	"fmt"
	"strings"
)

// MIDI range helpers
const (
	MinMIDI = 0
	MaxMIDI = 127

	// MiddleC is C4
	MiddleC = 60
)

var letterOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var sharpNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchClass parses a note name without octave ("C#", "Eb", "f") into 0-11.
func PitchClass(name string) (int, error) {
	pc, rest, err := parseLetter(name)
	if err != nil {
		return 0, err
	}
	if rest != "" {
		return 0, fmt.Errorf("unexpected %q after note name %q", rest, name)
	}
	return pc, nil
}

// NoteNameToMIDI converts a note name like "E1", "C4", "F#3", "Bb2" to MIDI note number
// Format: <note><accidental?><octave> where C4 = 60 = middle C.
func NoteNameToMIDI(noteName string) (int, error) {
	pc, rest, err := parseLetter(noteName)
	if err != nil {
		return 0, err
	}
	if rest == "" {
		return 0, fmt.Errorf("missing octave in note name: %s", noteName)
	}

	var octave int
	if _, err := fmt.Sscanf(rest, "%d", &octave); err != nil {
		return 0, fmt.Errorf("invalid octave in note name %s: %w", noteName, err)
	}
	if fmt.Sprintf("%d", octave) != rest {
		return 0, fmt.Errorf("invalid octave in note name %s", noteName)
	}

	// C-1 = 0, C4 = 60
	midi := (octave+1)*12 + pc
	if midi < MinMIDI || midi > MaxMIDI {
		return 0, fmt.Errorf("note %s outside MIDI range", noteName)
	}
	return midi, nil
}

// MIDIToNoteName renders a MIDI number with sharps, e.g. 61 -> "C#4"
func MIDIToNoteName(midi int) string {
	return fmt.Sprintf("%s%d", sharpNames[Mod12(midi)], midi/12-1)
}

// Mod12 returns the pitch class of any integer pitch
func Mod12(pitch int) int {
	return ((pitch % 12) + 12) % 12
}

// parseLetter reads the letter and optional accidental, returning the pitch
// class and the unparsed remainder.
func parseLetter(name string) (int, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, "", fmt.Errorf("empty note name")
	}
	letter := strings.ToUpper(name[:1])[0]
	offset, ok := letterOffsets[letter]
	if !ok {
		return 0, "", fmt.Errorf("invalid note letter: %c", name[0])
	}

	idx := 1
	if idx < len(name) {
		switch name[idx] {
		case '#':
			offset++
			idx++
		case 'b':
			offset--
			idx++
		}
	}
	return Mod12(offset), name[idx:], nil
}
