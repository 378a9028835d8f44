package prompt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/resonata/resonata-api/internal/models"
)

var placeholder = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// Builder fills the guidance prompt templates
type Builder struct {
	loader *Loader
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *Builder {
	return &Builder{loader: NewPromptLoader()}
}

// GuidanceInput is everything the guidance prompt mentions about a request
type GuidanceInput struct {
	Profile    *models.StyleProfile
	Summary    string
	Mood       models.Mood
	Innovation float64
	MinSeconds float64
	MaxSeconds float64
}

// BuildSystemPrompt returns the planner instructions for the duration window
func (b *Builder) BuildSystemPrompt(in GuidanceInput) (string, error) {
	tmpl, err := b.loader.GetSystemPrompt()
	if err != nil {
		return "", err
	}
	return fill(tmpl, map[string]string{
		"min_seconds": strconv.FormatFloat(in.MinSeconds, 'f', -1, 64),
		"max_seconds": strconv.FormatFloat(in.MaxSeconds, 'f', -1, 64),
	})
}

// BuildUserPrompt describes the composer and the listener's request
func (b *Builder) BuildUserPrompt(in GuidanceInput) (string, error) {
	if in.Profile == nil {
		return "", fmt.Errorf("prompt: profile is required")
	}
	tmpl, err := b.loader.GetUserPrompt()
	if err != nil {
		return "", err
	}

	templates := make([]string, len(in.Profile.HarmonicTemplates))
	for i, t := range in.Profile.HarmonicTemplates {
		templates[i] = strings.Join(t, "-")
	}
	contours := make([]string, len(in.Profile.Contours))
	for i, c := range in.Profile.Contours {
		contours[i] = string(c)
	}

	return fill(tmpl, map[string]string{
		"composer":   in.Profile.DisplayName,
		"summary":    in.Summary,
		"keys":       strings.Join(in.Profile.TypicalKeys, ", "),
		"tempo_min":  strconv.Itoa(in.Profile.Tempo.Min),
		"tempo_max":  strconv.Itoa(in.Profile.Tempo.Max),
		"templates":  strings.Join(templates, "; "),
		"contours":   strings.Join(contours, ", "),
		"mood":       string(in.Mood),
		"innovation": strconv.FormatFloat(in.Innovation, 'f', 2, 64),
	})
}

// fill replaces every {{name}}; a placeholder without a value is an error
func fill(tmpl string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt: no value for %s", strings.Join(missing, ", "))
	}
	return out, nil
}
