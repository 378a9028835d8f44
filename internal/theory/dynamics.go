package theory

import (
	"math"

	"github.com/resonata/resonata-api/internal/models"
)

var dynamicLevels = []string{"pp", "p", "mp", "mf", "f", "ff"}

var dynamicVelocity = map[string]int{
	"pp": 36, "p": 48, "mp": 60, "mf": 72, "f": 86, "ff": 100,
}

var sectionDynamics = map[models.SectionName]string{
	models.SectionIntro:      "p",
	models.SectionTheme:      "mp",
	models.SectionVariation:  "mf",
	models.SectionResolution: "p",
}

// SectionDynamic returns the base dynamic of a section; dramatic and
// passionate moods play one level louder.
func SectionDynamic(section models.SectionName, mood models.Mood) string {
	dyn, ok := sectionDynamics[section]
	if !ok {
		dyn = "mp"
	}
	if mood == models.MoodDramatic || mood == models.MoodPassionate {
		for i, level := range dynamicLevels {
			if level == dyn && i+1 < len(dynamicLevels) {
				return dynamicLevels[i+1]
			}
		}
	}
	return dyn
}

// Velocity scales a dynamic's MIDI velocity by an accent, clamped to 1-127
func Velocity(dynamic string, accent float64) int {
	base, ok := dynamicVelocity[dynamic]
	if !ok {
		base = dynamicVelocity["mp"]
	}
	v := int(math.Round(float64(base) * accent))
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return v
}
