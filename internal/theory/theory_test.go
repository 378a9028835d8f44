package theory

import (
	"testing"

	"github.com/resonata/resonata-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteNameToMIDI(t *testing.T) {
	tests := []struct {
		name        string
		note        string
		expected    int
		expectError bool
	}{
		{"middle C", "C4", 60, false},
		{"lowest C", "C-1", 0, false},
		{"sharp", "F#3", 54, false},
		{"flat", "Bb2", 46, false},
		{"lower case", "e1", 28, false},
		{"missing octave", "C", 0, true},
		{"bad letter", "H4", 0, true},
		{"bad octave", "C4x", 0, true},
		{"out of range", "C10", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NoteNameToMIDI(tt.note)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMIDIToNoteName(t *testing.T) {
	assert.Equal(t, "C4", MIDIToNoteName(60))
	assert.Equal(t, "C#4", MIDIToNoteName(61))
	assert.Equal(t, "A0", MIDIToNoteName(21))
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in    string
		tonic int
		mode  Mode
		name  string
	}{
		{"D minor", 2, ModeMinor, "D minor"},
		{"c# minor", 1, ModeMinor, "C# minor"},
		{"Eb major", 3, ModeMajor, "Eb major"},
		{"Dm", 2, ModeMinor, "D minor"},
		{"F", 5, ModeMajor, "F major"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			k, err := ParseKey(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.tonic, k.Tonic)
			assert.Equal(t, tt.mode, k.Mode)
			assert.Equal(t, tt.name, k.Name)
		})
	}

	for _, bad := range []string{"", "H minor", "D dorian", "C major extra"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestKeyScaleAndSignature(t *testing.T) {
	d, _ := ParseKey("D minor")
	assert.Equal(t, []int{2, 4, 5, 7, 9, 10, 0}, d.Scale())
	sf, minor := d.Signature()
	assert.Equal(t, int8(-1), sf)
	assert.True(t, minor)

	e, _ := ParseKey("E major")
	sf, minor = e.Signature()
	assert.Equal(t, int8(4), sf)
	assert.False(t, minor)

	gb, _ := ParseKey("Gb major")
	sf, _ = gb.Signature()
	assert.Equal(t, int8(-6), sf)

	cs, _ := ParseKey("C# minor")
	sf, _ = cs.Signature()
	assert.Equal(t, int8(4), sf)
}

func TestParseNumeral(t *testing.T) {
	tests := []struct {
		in       string
		degree   int
		acc      int
		upper    bool
		quality  models.ChordQuality
		seventh  bool
		hasError bool
	}{
		{in: "i", degree: 0},
		{in: "V", degree: 4, upper: true},
		{in: "V7", degree: 4, upper: true, seventh: true},
		{in: "iv", degree: 3},
		{in: "bVI", degree: 5, acc: -1, upper: true},
		{in: "vii°", degree: 6, quality: models.QualityDiminished},
		{in: "viio7", degree: 6, quality: models.QualityDiminished, seventh: true},
		{in: "iiø7", degree: 1, quality: models.QualityDiminished, seventh: true},
		{in: "III+", degree: 2, upper: true, quality: models.QualityAugmented},
		{in: "Iv", hasError: true},
		{in: "X", hasError: true},
		{in: "V9", hasError: true},
		{in: "IIII", hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := ParseNumeral(tt.in)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.degree, n.Degree)
			assert.Equal(t, tt.acc, n.Accidental)
			assert.Equal(t, tt.upper, n.Upper)
			assert.Equal(t, tt.quality, n.Quality)
			assert.Equal(t, tt.seventh, n.Seventh)
		})
	}
}

func TestNumeralCandidates(t *testing.T) {
	dMinor, _ := ParseKey("D minor")
	cMajor, _ := ParseKey("C major")

	ii, _ := ParseNumeral("ii")
	assert.Equal(t, []models.ChordQuality{models.QualityMinor, models.QualityDiminished}, ii.Candidates(dMinor))
	assert.Equal(t, []models.ChordQuality{models.QualityMinor}, ii.Candidates(cMajor))

	v, _ := ParseNumeral("V")
	assert.Equal(t, []models.ChordQuality{models.QualityMajor}, v.Candidates(dMinor))
	assert.Equal(t, 9, v.Root(dMinor, models.QualityMajor)) // A

	vii, _ := ParseNumeral("vii°")
	assert.Equal(t, 1, vii.Root(dMinor, models.QualityDiminished)) // C#
	VII, _ := ParseNumeral("VII")
	assert.Equal(t, 0, VII.Root(dMinor, models.QualityMajor)) // C
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		level float64
		band  Band
	}{
		{0, BandLow},
		{0.3299, BandLow},
		{0.33, BandMedium},
		{0.6599, BandMedium},
		{0.66, BandHigh},
		{1, BandHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.band, BandFor(tt.level), "level %v", tt.level)
	}
	assert.Equal(t, 4, BandLow.MaxInterval())
	assert.Equal(t, 5, BandMedium.MaxInterval())
	assert.Equal(t, 9, BandHigh.MaxInterval())
	assert.Equal(t, "medium", BandMedium.String())
}

func TestSeventhInterval(t *testing.T) {
	dMinor, _ := ParseKey("D minor")
	cMajor, _ := ParseKey("C major")
	v, _ := ParseNumeral("V")
	one, _ := ParseNumeral("I")
	vii, _ := ParseNumeral("vii°")

	assert.Equal(t, 10, SeventhInterval(v, cMajor, models.QualityMajor))
	assert.Equal(t, 11, SeventhInterval(one, cMajor, models.QualityMajor))
	assert.Equal(t, 9, SeventhInterval(vii, dMinor, models.QualityDiminished))
	assert.Equal(t, 10, SeventhInterval(vii, cMajor, models.QualityDiminished))
}

func TestChordPitchClasses(t *testing.T) {
	assert.Equal(t, []int{2, 5, 9}, ChordPitchClasses(2, TriadIntervals(models.QualityMinor)))
	assert.Equal(t, []int{9, 1, 4, 7}, ChordPitchClasses(9, []int{0, 4, 7, 10}))
}

func TestFeelFor(t *testing.T) {
	f, ok := FeelFor("rubato")
	require.True(t, ok)
	assert.Equal(t, "bass-chord", f.Accompaniment)
	assert.Equal(t, "rubato", f.Melody.Name)

	f, ok = FeelFor("")
	require.True(t, ok)
	assert.Equal(t, DefaultRhythm, f.Tag)

	_, ok = FeelFor("tango")
	assert.False(t, ok)

	for _, tag := range RhythmTags() {
		f, ok := FeelFor(tag)
		require.True(t, ok, tag)
		assert.NotEmpty(t, f.Melody.Offsets, tag)
	}
}
