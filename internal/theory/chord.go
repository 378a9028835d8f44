package theory

import "github.com/resonata/resonata-api/internal/models"

// TriadIntervals returns semitones above the root for a quality
func TriadIntervals(quality models.ChordQuality) []int {
	switch quality {
	case models.QualityMinor:
		return []int{0, 3, 7} // Root, Minor 3rd, Perfect 5th
	case models.QualityDiminished:
		return []int{0, 3, 6} // Root, Minor 3rd, Diminished 5th
	case models.QualityAugmented:
		return []int{0, 4, 8} // Root, Major 3rd, Augmented 5th
	default:
		return []int{0, 4, 7} // Root, Major 3rd, Perfect 5th
	}
}

// SeventhInterval picks the seventh for a chord. Dominant-function major
// chords and minor chords take the minor seventh, other major chords the
// major seventh; the leading-tone diminished chord in minor is fully
// diminished.
func SeventhInterval(n Numeral, key Key, quality models.ChordQuality) int {
	switch quality {
	case models.QualityMajor:
		if n.Degree == 4 && n.Accidental == 0 {
			return 10
		}
		return 11
	case models.QualityDiminished:
		if key.Mode == ModeMinor && n.Degree == 6 {
			return 9
		}
		return 10
	default:
		return 10
	}
}

// ExtensionInterval maps 7/9/11 to semitones; the seventh needs chord
// context and is resolved by SeventhInterval.
func ExtensionInterval(ext int) int {
	switch ext {
	case 9:
		return 14
	case 11:
		return 17
	case 13:
		return 21
	}
	return 0
}

// ChordPitchClasses lists the members of a chord, root first, followed by
// third, fifth and extensions in ascending order.
func ChordPitchClasses(root int, intervals []int) []int {
	out := make([]int, 0, len(intervals))
	seen := make(map[int]bool, len(intervals))
	for _, iv := range intervals {
		pc := Mod12(root + iv)
		if seen[pc] {
			continue
		}
		seen[pc] = true
		out = append(out, pc)
	}
	return out
}
