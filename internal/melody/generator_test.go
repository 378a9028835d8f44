package melody

import (
	"math/rand"
	"testing"

	"github.com/resonata/resonata-api/internal/harmony"
	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, contour models.Contour, level float64) (*Generator, Input) {
	t.Helper()
	key, err := theory.ParseKey("D minor")
	require.NoError(t, err)

	section := models.SectionPlan{
		Name:             models.SectionTheme,
		Measures:         6,
		HarmonicTemplate: []string{"i", "iv", "VII", "V", "i"},
		Contour:          contour,
		RhythmTag:        "rubato",
	}
	chords, err := harmony.NewRealizer(&models.StyleProfile{}).Realize(section, key, level)
	require.NoError(t, err)

	return NewGenerator(key), Input{
		Section:    section,
		Chords:     chords,
		Innovation: level,
		Mood:       models.MoodMelancholic,
	}
}

func chordAt(chords []models.ChordEvent, beat float64) models.ChordEvent {
	c, _ := activeChord(chords, beat)
	return c
}

func TestGenerateRespectsRangeAndHarmony(t *testing.T) {
	for _, level := range []float64{0.1, 0.5, 0.9} {
		for _, contour := range []models.Contour{models.ContourDescending, models.ContourAscending, models.ContourArch, models.ContourStatic} {
			g, in := setup(t, contour, level)
			notes, err := g.Generate(in, rand.New(rand.NewSource(7)))
			require.NoError(t, err)
			require.NotEmpty(t, notes)

			for i, n := range notes {
				assert.GreaterOrEqual(t, n.MidiNoteNumber, RangeLow)
				assert.LessOrEqual(t, n.MidiNoteNumber, RangeHigh)
				assert.Equal(t, models.HandRight, n.Hand)

				chord := chordAt(in.Chords, n.StartBeats)
				inBar := n.StartBeats - float64(int(n.StartBeats)/4*4)
				if theory.IsStrongBeat(inBar) {
					assert.True(t, chord.Contains(n.MidiNoteNumber), "strong beat %v pitch %d", n.StartBeats, n.MidiNoteNumber)
				} else {
					assert.True(t, chord.Contains(n.MidiNoteNumber) || g.key.InScale(n.MidiNoteNumber))
				}
				if i > 0 {
					assert.LessOrEqual(t, notes[i-1].EndBeats(), n.StartBeats, "overlap at %d", i)
				}
			}
		}
	}
}

func TestGenerateLowBandIntervals(t *testing.T) {
	g, in := setup(t, models.ContourArch, 0.1)
	notes, err := g.Generate(in, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	for i := 1; i < len(notes); i++ {
		d := abs(notes[i].MidiNoteNumber - notes[i-1].MidiNoteNumber)
		assert.LessOrEqual(t, d, theory.BandLow.MaxInterval())
		assert.NotZero(t, d, "unison outside static contour at %d", i)
	}
}

func TestGenerateHighBandLeaps(t *testing.T) {
	g, in := setup(t, models.ContourArch, 0.9)
	notes, err := g.Generate(in, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	leaps := 0
	for i := 1; i < len(notes); i++ {
		d := abs(notes[i].MidiNoteNumber - notes[i-1].MidiNoteNumber)
		assert.LessOrEqual(t, d, theory.BandHigh.MaxInterval())
		if d >= 5 {
			leaps++
		}
	}
	assert.Positive(t, leaps)
}

func TestGenerateContourDirection(t *testing.T) {
	g, in := setup(t, models.ContourDescending, 0.5)
	notes, err := g.Generate(in, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Greater(t, notes[0].MidiNoteNumber, notes[len(notes)-1].MidiNoteNumber)

	g, in = setup(t, models.ContourAscending, 0.5)
	notes, err = g.Generate(in, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Less(t, notes[0].MidiNoteNumber, notes[len(notes)-1].MidiNoteNumber)
}

func TestGenerateDeterministic(t *testing.T) {
	g, in := setup(t, models.ContourArch, 0.7)
	a, err := g.Generate(in, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	b, err := g.Generate(in, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateFinalCadence(t *testing.T) {
	g, in := setup(t, models.ContourDescending, 0.2)
	in.Final = true
	notes, err := g.Generate(in, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	last := notes[len(notes)-1]
	chord := chordAt(in.Chords, last.StartBeats)
	assert.Equal(t, chord.Root, theory.Mod12(last.MidiNoteNumber))
}

func TestGenerateContinuesFromPrevious(t *testing.T) {
	g, in := setup(t, models.ContourAscending, 0.1)
	in.Previous = 81
	notes, err := g.Generate(in, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.LessOrEqual(t, abs(notes[0].MidiNoteNumber-81), 4)
}

func TestGenerateErrors(t *testing.T) {
	g, in := setup(t, models.ContourArch, 0.5)

	bad := in
	bad.Chords = nil
	_, err := g.Generate(bad, nil)
	assert.Error(t, err)

	bad = in
	bad.Section.Contour = "zigzag"
	_, err = g.Generate(bad, nil)
	assert.Error(t, err)

	bad = in
	bad.Section.RhythmTag = "tango"
	_, err = g.Generate(bad, nil)
	assert.Error(t, err)
}

func TestNearestTieBreak(t *testing.T) {
	// 62 and 66 are equidistant from 64; rng must pick one of them.
	got := nearest([]int{62, 66, 70}, 64, rand.New(rand.NewSource(1)))
	assert.Contains(t, []int{62, 66}, got)
	assert.Equal(t, 62, nearest([]int{62, 66}, 64, nil))
}
