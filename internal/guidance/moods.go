package guidance

import "github.com/resonata/resonata-api/internal/models"

// moodShape is how a mood bends the rule-based plan
type moodShape struct {
	// TempoPosition places the tempo inside the profile range (0 = min, 1 = max)
	TempoPosition float64
	// Contours lists one contour per section in canonical order
	Contours [4]models.Contour
	// TemplateOffset is where the cycle through the profile templates starts
	TemplateOffset int
}

var moodTable = map[models.Mood]moodShape{
	models.MoodMelancholic: {
		TempoPosition:  0.15,
		Contours:       [4]models.Contour{models.ContourDescending, models.ContourArch, models.ContourAscending, models.ContourDescending},
		TemplateOffset: 0,
	},
	models.MoodNostalgic: {
		TempoPosition:  0.35,
		Contours:       [4]models.Contour{models.ContourArch, models.ContourDescending, models.ContourArch, models.ContourDescending},
		TemplateOffset: 1,
	},
	models.MoodSerene: {
		TempoPosition:  0.3,
		Contours:       [4]models.Contour{models.ContourStatic, models.ContourArch, models.ContourStatic, models.ContourDescending},
		TemplateOffset: 2,
	},
	models.MoodHopeful: {
		TempoPosition:  0.6,
		Contours:       [4]models.Contour{models.ContourAscending, models.ContourArch, models.ContourAscending, models.ContourStatic},
		TemplateOffset: 4,
	},
	models.MoodDramatic: {
		TempoPosition:  0.85,
		Contours:       [4]models.Contour{models.ContourDescending, models.ContourAscending, models.ContourArch, models.ContourDescending},
		TemplateOffset: 3,
	},
	models.MoodPassionate: {
		TempoPosition:  0.95,
		Contours:       [4]models.Contour{models.ContourAscending, models.ContourArch, models.ContourDescending, models.ContourArch},
		TemplateOffset: 5,
	},
}

// shapeFor falls back to the nostalgic shape for a mood missing from the table
func shapeFor(mood models.Mood) moodShape {
	if s, ok := moodTable[mood]; ok {
		return s
	}
	return moodTable[models.MoodNostalgic]
}
