package guidance

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/score"
)

const validPayload = `{
  "key": "D minor",
  "tempoBPM": 200,
  "sections": [
    {"name": "theme", "measureCount": 3, "harmonicTemplate": ["i", "iv", "V", "i"], "contourTag": "arch"},
    {"name": "intro", "measureCount": 2, "harmonicTemplate": ["i", "V"], "contourTag": "descending"},
    {"name": "variation", "measureCount": 3, "harmonicTemplate": ["i", "VI", "V", "i"], "contourTag": "ascending"},
    {"name": "coda", "measureCount": 2, "harmonicTemplate": ["iv", "V7", "i"], "contourTag": "descending"}
  ]
}`

func chopinInput(t *testing.T) PlanInput {
	t.Helper()
	profile, err := loadProfiles(t).Profile("chopin")
	require.NoError(t, err)
	return PlanInput{Profile: profile, Mood: models.MoodMelancholic, MinSeconds: 30, MaxSeconds: 45}
}

func TestValidatePayload(t *testing.T) {
	plan, err := ValidatePayload(validPayload, chopinInput(t))
	require.NoError(t, err)

	assert.Equal(t, "D minor", plan.Key)
	assert.Equal(t, 80, plan.TempoBPM, "tempo is clamped into the profile range")
	require.Len(t, plan.Sections, 4)
	for i, s := range plan.Sections {
		assert.Equal(t, models.SectionOrder[i], s.Name)
		assert.NotEmpty(t, s.RhythmTag)
	}
	assert.Equal(t, []string{"iv", "V7", "i"}, plan.Sections[3].HarmonicTemplate)
	assert.Equal(t, models.ContourAscending, plan.Sections[2].Contour)
}

func TestValidatePayloadRepairsMalformedJSON(t *testing.T) {
	raw := `{"key": "D minor", "tempoBPM": 66, "sections": [
	  {"name": "variation", "measureCount": 8, "harmonicTemplate": ["i", "V", "i"], "contourTag": "arch",},
	],}`
	plan, err := ValidatePayload(raw, chopinInput(t))
	require.NoError(t, err)
	require.Len(t, plan.Sections, 1)
	assert.Equal(t, models.SectionVariation, plan.Sections[0].Name)
}

func TestValidatePayloadRejectsNoteContent(t *testing.T) {
	section := `{"name": "variation", "measureCount": 4, "harmonicTemplate": ["i", "V", "i"], "contourTag": "arch"}`
	tests := []struct {
		name string
		raw  string
	}{
		{"melody key", `{"key": "D minor", "tempoBPM": 70, "sections": [` + section + `], "melody": "x"}`},
		{"nested notes", `{"key": "D minor", "tempoBPM": 70, "sections": [{"name": "variation", "measureCount": 4, "harmonicTemplate": ["i"], "contourTag": "arch", "notes": []}]}`},
		{"midi prefix", `{"key": "D minor", "tempoBPM": 70, "sections": [` + section + `], "midiData": "AAAA"}`},
		{"pitches", `{"key": "D minor", "tempoBPM": 70, "sections": [` + section + `], "Pitches": [1]}`},
		{"note names", `{"key": "D minor", "tempoBPM": 70, "sections": [` + section + `], "hint": "C4 D4 E4"}`},
		{"midi numbers", `{"key": "D minor", "tempoBPM": 70, "sections": [` + section + `], "extra": [62, 65, 69]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePayload(tt.raw, chopinInput(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidGuidancePayload)
			assert.Contains(t, err.Error(), "note-level content")
		})
	}
}

func TestValidatePayloadRejectsBadStructure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown section", `{"key": "D minor", "tempoBPM": 70, "sections": [
			{"name": "bridge", "measureCount": 4, "harmonicTemplate": ["i"], "contourTag": "arch"},
			{"name": "variation", "measureCount": 4, "harmonicTemplate": ["i"], "contourTag": "arch"}]}`},
		{"missing variation", `{"key": "D minor", "tempoBPM": 70, "sections": [
			{"name": "theme", "measureCount": 4, "harmonicTemplate": ["i"], "contourTag": "arch"}]}`},
		{"duplicate section", `{"key": "D minor", "tempoBPM": 70, "sections": [
			{"name": "theme", "measureCount": 4, "harmonicTemplate": ["i"], "contourTag": "arch"},
			{"name": "main_theme", "measureCount": 4, "harmonicTemplate": ["i"], "contourTag": "arch"},
			{"name": "variation", "measureCount": 4, "harmonicTemplate": ["i"], "contourTag": "arch"}]}`},
		{"bad key", `{"key": "H minor", "tempoBPM": 70, "sections": [
			{"name": "variation", "measureCount": 4, "harmonicTemplate": ["i"], "contourTag": "arch"}]}`},
		{"bad numeral", `{"key": "D minor", "tempoBPM": 70, "sections": [
			{"name": "variation", "measureCount": 4, "harmonicTemplate": ["i", "Q"], "contourTag": "arch"}]}`},
		{"bad contour", `{"key": "D minor", "tempoBPM": 70, "sections": [
			{"name": "variation", "measureCount": 4, "harmonicTemplate": ["i"], "contourTag": "zigzag"}]}`},
		{"zero measures", `{"key": "D minor", "tempoBPM": 70, "sections": [
			{"name": "variation", "measureCount": 0, "harmonicTemplate": ["i"], "contourTag": "arch"}]}`},
		{"too many numerals", `{"key": "D minor", "tempoBPM": 70, "sections": [
			{"name": "variation", "measureCount": 1, "harmonicTemplate": ["i","i","i","i","i","i","i","i","i"], "contourTag": "arch"}]}`},
		{"cannot fit window", `{"key": "D minor", "tempoBPM": 60, "sections": [
			{"name": "theme", "measureCount": 40, "harmonicTemplate": ["i", "V", "i"], "contourTag": "arch"},
			{"name": "variation", "measureCount": 2, "harmonicTemplate": ["i"], "contourTag": "arch"}]}`},
		{"zero tempo", `{"key": "D minor", "tempoBPM": 0, "sections": [
			{"name": "variation", "measureCount": 4, "harmonicTemplate": ["i"], "contourTag": "arch"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePayload(tt.raw, chopinInput(t))
			assert.ErrorIs(t, err, models.ErrInvalidGuidancePayload)
		})
	}
}

// longVariation builds a chopin payload at 80 BPM whose variation is far too
// long and carries numerals numerals.
func longVariation(numerals int) string {
	template := strings.TrimSuffix(strings.Repeat(`"i", "V", `, numerals/2), ", ")
	return fmt.Sprintf(`{"key": "D minor", "tempoBPM": 80, "sections": [
		{"name": "intro", "measureCount": 2, "harmonicTemplate": ["i", "V"], "contourTag": "arch"},
		{"name": "theme", "measureCount": 2, "harmonicTemplate": ["i", "iv", "V", "i"], "contourTag": "arch"},
		{"name": "variation", "measureCount": 30, "harmonicTemplate": [%s], "contourTag": "arch"},
		{"name": "resolution", "measureCount": 2, "harmonicTemplate": ["iv", "V", "i"], "contourTag": "arch"}]}`, template)
}

func TestValidatePayloadChecksTemplateAfterStretch(t *testing.T) {
	// 60 numerals fit 30 measures but not the 7 the window leaves after stretching
	_, err := ValidatePayload(longVariation(60), chopinInput(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidGuidancePayload)
	assert.Contains(t, err.Error(), "cannot hold 60 numerals")

	plan, err := ValidatePayload(longVariation(4), chopinInput(t))
	require.NoError(t, err)
	stretched, err := score.NewAssembler(30, 45).Stretch(plan)
	require.NoError(t, err)
	assert.Equal(t, 7, stretched.Sections[2].Measures)
}

func TestFindNoteContentIgnoresPlanVocabulary(t *testing.T) {
	var v any = map[string]any{
		"key":      "Bb major",
		"tempoBPM": float64(72),
		"sections": []any{map[string]any{
			"name":             "theme",
			"measureCount":     float64(4),
			"harmonicTemplate": []any{"I", "vi", "ii7", "V7"},
			"contourTag":       "arch",
		}},
	}
	_, found := findNoteContent(v, "$")
	assert.False(t, found)

	assert.False(t, midiNumbers([]any{float64(60)}))

	_, found = findNoteContent("open on G9 then rest", "$")
	assert.True(t, found)
	_, found = findNoteContent("G#9", "$")
	assert.False(t, found, "above the MIDI range, not a playable note")
	assert.False(t, midiNumbers([]any{float64(60), float64(128)}))
	assert.False(t, midiNumbers([]any{float64(60), 61.5}))
	assert.True(t, midiNumbers([]any{float64(60), float64(64)}))
}
