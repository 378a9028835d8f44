package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMood(t *testing.T) {
	m, err := ParseMood("  Melancholic ")
	require.NoError(t, err)
	assert.Equal(t, MoodMelancholic, m)

	_, err = ParseMood("angry")
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestGenerationRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     GenerationRequest
		wantErr bool
	}{
		{"valid", GenerationRequest{ComposerID: "chopin", Mood: MoodSerene, InnovationLevel: 0.5}, false},
		{"bounds inclusive", GenerationRequest{ComposerID: "chopin", Mood: MoodSerene, InnovationLevel: 1}, false},
		{"missing composer", GenerationRequest{Mood: MoodSerene}, true},
		{"bad mood", GenerationRequest{ComposerID: "chopin", Mood: "bored"}, true},
		{"innovation too high", GenerationRequest{ComposerID: "chopin", Mood: MoodSerene, InnovationLevel: 1.01}, true},
		{"innovation negative", GenerationRequest{ComposerID: "chopin", Mood: MoodSerene, InnovationLevel: -0.1}, true},
		{"innovation NaN", GenerationRequest{ComposerID: "chopin", Mood: MoodSerene, InnovationLevel: math.NaN()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRequest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContourOpposes(t *testing.T) {
	assert.True(t, ContourDescending.Opposes(ContourAscending))
	assert.True(t, ContourAscending.Opposes(ContourDescending))
	assert.False(t, ContourArch.Opposes(ContourDescending))
	assert.False(t, ContourStatic.Opposes(ContourStatic))
}

func TestChordEventContains(t *testing.T) {
	c := ChordEvent{PitchClasses: []int{2, 5, 9}}
	assert.True(t, c.Contains(62))
	assert.True(t, c.Contains(69))
	assert.False(t, c.Contains(60))
}

func TestTempoRangeClamp(t *testing.T) {
	r := TempoRange{Min: 60, Max: 80}
	assert.Equal(t, 60, r.Clamp(40))
	assert.Equal(t, 72, r.Clamp(72))
	assert.Equal(t, 80, r.Clamp(120))
}
