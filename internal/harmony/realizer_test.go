package harmony

import (
	"testing"

	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chopinProfile() *models.StyleProfile {
	return &models.StyleProfile{
		ComposerID: "chopin",
		QualityPreferences: map[string]models.ChordQuality{
			"ii": models.QualityDiminished,
		},
	}
}

func dMinor(t *testing.T) theory.Key {
	k, err := theory.ParseKey("D minor")
	require.NoError(t, err)
	return k
}

func TestRealizeLowBandTriads(t *testing.T) {
	r := NewRealizer(chopinProfile())
	section := models.SectionPlan{Name: models.SectionTheme, Measures: 4, HarmonicTemplate: []string{"i", "iv", "V", "i"}}

	chords, err := r.Realize(section, dMinor(t), 0.1)
	require.NoError(t, err)
	require.Len(t, chords, 4)

	assert.Equal(t, []models.ChordQuality{models.QualityMinor, models.QualityMinor, models.QualityMajor, models.QualityMinor},
		[]models.ChordQuality{chords[0].Quality, chords[1].Quality, chords[2].Quality, chords[3].Quality})
	assert.Equal(t, []int{0, 1, 0, 0}, []int{chords[0].Inversion, chords[1].Inversion, chords[2].Inversion, chords[3].Inversion})

	assert.Equal(t, []int{38, 41, 45}, chords[0].Voicing)
	assert.Equal(t, []int{46, 50, 55}, chords[1].Voicing)
	assert.Equal(t, []int{9, 1, 4}, chords[2].PitchClasses) // A major in D minor

	for i, c := range chords {
		assert.Empty(t, c.Extensions)
		assert.Equal(t, float64(i*4), c.StartBeats)
		assert.Equal(t, 4.0, c.DurationBeats)
	}
}

func TestRealizeLowBandIgnoresRequestedSevenths(t *testing.T) {
	r := NewRealizer(nil)
	section := models.SectionPlan{Measures: 2, HarmonicTemplate: []string{"ii7", "V7"}}
	k, _ := theory.ParseKey("C major")

	chords, err := r.Realize(section, k, 0.2)
	require.NoError(t, err)
	for _, c := range chords {
		assert.Empty(t, c.Extensions)
		assert.Len(t, c.PitchClasses, 3)
	}
}

func TestResolveAmbiguousQuality(t *testing.T) {
	section := models.SectionPlan{Measures: 1, HarmonicTemplate: []string{"ii"}}

	chords, err := NewRealizer(chopinProfile()).Realize(section, dMinor(t), 0)
	require.NoError(t, err)
	assert.Equal(t, models.QualityDiminished, chords[0].Quality)
	assert.Equal(t, []int{4, 7, 10}, chords[0].PitchClasses)

	// No preference: fixed priority puts minor ahead of diminished.
	chords, err = NewRealizer(&models.StyleProfile{}).Realize(section, dMinor(t), 0)
	require.NoError(t, err)
	assert.Equal(t, models.QualityMinor, chords[0].Quality)

	// Determinism across repeated calls.
	again, err := NewRealizer(&models.StyleProfile{}).Realize(section, dMinor(t), 0)
	require.NoError(t, err)
	assert.Equal(t, chords, again)
}

func TestRealizeMediumBandSevenths(t *testing.T) {
	k, _ := theory.ParseKey("C major")
	section := models.SectionPlan{Measures: 4, HarmonicTemplate: []string{"I", "IV7", "V", "I"}}

	chords, err := NewRealizer(nil).Realize(section, k, 0.5)
	require.NoError(t, err)

	assert.Empty(t, chords[0].Extensions)
	assert.Equal(t, []int{7}, chords[1].Extensions)
	assert.Equal(t, []int{5, 9, 0, 4}, chords[1].PitchClasses) // Fmaj7
	assert.Equal(t, []int{7}, chords[2].Extensions)
	assert.Equal(t, []int{7, 11, 2, 5}, chords[2].PitchClasses) // G7
	assert.Empty(t, chords[3].Extensions)
}

func TestRealizeHighBandExtensions(t *testing.T) {
	section := models.SectionPlan{Measures: 4, HarmonicTemplate: []string{"i", "iv", "V", "i"}}

	chords, err := NewRealizer(chopinProfile()).Realize(section, dMinor(t), 0.9)
	require.NoError(t, err)

	assert.Equal(t, []int{7, 9}, chords[0].Extensions)
	assert.Equal(t, []int{7, 9, 11}, chords[1].Extensions)
	assert.Equal(t, []int{7}, chords[2].Extensions)
	assert.Equal(t, []int{7, 9}, chords[3].Extensions)
	assert.Equal(t, 0, chords[3].Inversion)
	assert.Equal(t, 1, chords[1].Inversion)
	assert.Equal(t, 2, chords[2].Inversion)

	hasRich := false
	for _, c := range chords {
		if c.HasExtension(9) || c.HasExtension(11) {
			hasRich = true
		}
	}
	assert.True(t, hasRich)
}

func TestVoicingStaysInLeftHand(t *testing.T) {
	for _, level := range []float64{0, 0.5, 0.95} {
		section := models.SectionPlan{Measures: 6, HarmonicTemplate: []string{"i", "iv", "VII", "V", "ii", "i"}}
		chords, err := NewRealizer(chopinProfile()).Realize(section, dMinor(t), level)
		require.NoError(t, err)
		for _, c := range chords {
			require.NotEmpty(t, c.Voicing)
			assert.GreaterOrEqual(t, c.Voicing[0], BassLow)
			assert.Less(t, c.Voicing[0], BassHigh)
			for _, p := range c.Voicing {
				assert.Less(t, p, HandSplit)
				assert.True(t, c.Contains(p))
			}
			assert.Equal(t, c.PitchClasses[c.Inversion], theory.Mod12(c.Voicing[0]))
		}
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name     string
		n, m     int
		starts   []float64
		durs     []float64
		numerals []int
	}{
		{"one per measure", 4, 4, []float64{0, 4, 8, 12}, []float64{4, 4, 4, 4}, []int{0, 1, 2, 3}},
		{"stretched", 2, 4, []float64{0, 8}, []float64{8, 8}, []int{0, 1}},
		{"uneven", 3, 4, []float64{0, 8, 12}, []float64{8, 4, 4}, []int{0, 1, 2}},
		{"beat grid", 5, 2, []float64{0, 1, 3, 4, 6}, []float64{1, 2, 1, 2, 2}, []int{0, 1, 2, 3, 4}},
		{"half beat grid", 6, 1, []float64{0, 0.5, 1, 2, 2.5, 3}, []float64{0.5, 0.5, 1, 0.5, 0.5, 1}, []int{0, 1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := layout(tt.n, tt.m)
			require.NoError(t, err)
			require.Len(t, slots, len(tt.starts))
			for i, s := range slots {
				assert.Equal(t, tt.starts[i], s.start, "start %d", i)
				assert.Equal(t, tt.durs[i], s.dur, "dur %d", i)
				assert.Equal(t, tt.numerals[i], s.numeral)
			}
		})
	}

	_, err := layout(9, 1)
	assert.Error(t, err)
}

func TestRealizeErrors(t *testing.T) {
	r := NewRealizer(nil)
	k, _ := theory.ParseKey("C major")

	_, err := r.Realize(models.SectionPlan{Measures: 0, HarmonicTemplate: []string{"I"}}, k, 0)
	assert.Error(t, err)
	_, err = r.Realize(models.SectionPlan{Measures: 2}, k, 0)
	assert.Error(t, err)
	_, err = r.Realize(models.SectionPlan{Measures: 2, HarmonicTemplate: []string{"I", "Z"}}, k, 0)
	assert.Error(t, err)
}
