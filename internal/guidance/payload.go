package guidance

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/resonata/resonata-api/internal/harmony"
	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/score"
	"github.com/resonata/resonata-api/internal/theory"
)

// planPayload is the structure the guidance model is asked to return
type planPayload struct {
	Key      string           `json:"key" jsonschema:"Key of the piece, for example D minor or Eb major"`
	TempoBPM int              `json:"tempoBPM" jsonschema:"Tempo in beats per minute"`
	Sections []sectionPayload `json:"sections" jsonschema:"Sections in order: intro, theme, variation, resolution"`
}

type sectionPayload struct {
	Name             string   `json:"name" jsonschema:"One of intro, theme, variation, resolution"`
	MeasureCount     int      `json:"measureCount" jsonschema:"Number of 4/4 measures"`
	HarmonicTemplate []string `json:"harmonicTemplate" jsonschema:"Roman numerals relative to the key, for example i iv V i"`
	ContourTag       string   `json:"contourTag" jsonschema:"One of ascending, descending, arch, static"`
}

var (
	// a note name with an octave: C4, F#3, Bb-1
	noteToken = regexp.MustCompile(`^[A-Ga-g][#b]?-?\d$`)

	noteKeys = map[string]bool{
		"note": true, "notes": true, "melody": true, "melodies": true,
		"pitch": true, "pitches": true, "velocity": true, "velocities": true,
	}

	sectionAliases = map[string]models.SectionName{
		"main_theme": models.SectionTheme,
		"maintheme":  models.SectionTheme,
		"coda":       models.SectionResolution,
		"outro":      models.SectionResolution,
	}
)

// ValidatePayload parses a guidance response into a plan. Anything that looks
// like note-level content, or a structure the pipeline cannot realize inside
// the duration window, fails with ErrInvalidGuidancePayload.
func ValidatePayload(raw string, in PlanInput) (*models.StructuralPlan, error) {
	if in.Profile == nil {
		return nil, fmt.Errorf("%w: no profile", models.ErrInvalidGuidancePayload)
	}
	data, err := decodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidGuidancePayload, err)
	}
	if path, found := findNoteContent(data, "$"); found {
		return nil, fmt.Errorf("%w: note-level content at %s", models.ErrInvalidGuidancePayload, path)
	}

	var p planPayload
	if err := remarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidGuidancePayload, err)
	}

	key, err := theory.ParseKey(p.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidGuidancePayload, err)
	}
	if p.TempoBPM <= 0 {
		return nil, fmt.Errorf("%w: tempo must be positive, got %d", models.ErrInvalidGuidancePayload, p.TempoBPM)
	}
	tempo := in.Profile.Tempo.Clamp(p.TempoBPM)

	sections, err := validateSections(p.Sections)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidGuidancePayload, err)
	}
	for i := range sections {
		sections[i].RhythmTag = in.Profile.RhythmFor(i)
	}
	plan := &models.StructuralPlan{
		Key:      key.String(),
		TempoBPM: tempo,
		Sections: sections,
	}
	if err := checkFits(plan, in.MinSeconds, in.MaxSeconds); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidGuidancePayload, err)
	}
	return plan, nil
}

// decodeJSON parses raw, repairing it once when it is not valid JSON
func decodeJSON(raw string) (any, error) {
	var v any
	err := json.Unmarshal([]byte(raw), &v)
	if err == nil {
		return v, nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return nil, err
	}
	fixed, rerr := jsonrepair.JSONRepair(raw)
	if rerr != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(fixed), &v); err != nil {
		return nil, fmt.Errorf("malformed JSON after repair: %w", err)
	}
	return v, nil
}

func remarshal(v any, out *planPayload) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// findNoteContent walks the decoded payload looking for melodies, pitch
// lists or note names.
func findNoteContent(v any, path string) (string, bool) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lk := strings.ToLower(k)
			if noteKeys[lk] || strings.HasPrefix(lk, "midi") {
				return path + "." + k, true
			}
			if p, found := findNoteContent(t[k], path+"."+k); found {
				return p, true
			}
		}
	case []any:
		if midiNumbers(t) {
			return path, true
		}
		for i, item := range t {
			if p, found := findNoteContent(item, fmt.Sprintf("%s[%d]", path, i)); found {
				return p, true
			}
		}
	case string:
		for _, tok := range strings.FieldsFunc(t, func(r rune) bool {
			return r == ' ' || r == ',' || r == '-' || r == ';' || r == '|'
		}) {
			if !noteToken.MatchString(tok) {
				continue
			}
			if _, err := theory.NoteNameToMIDI(tok); err == nil {
				return path, true
			}
		}
	}
	return "", false
}

// midiNumbers reports an array of two or more integers that are all valid MIDI numbers
func midiNumbers(items []any) bool {
	if len(items) < 2 {
		return false
	}
	for _, item := range items {
		f, ok := item.(float64)
		if !ok || f != math.Trunc(f) || f < 0 || f > 127 {
			return false
		}
	}
	return true
}

func validateSections(in []sectionPayload) ([]models.SectionPlan, error) {
	order := make(map[models.SectionName]int, len(models.SectionOrder))
	for i, name := range models.SectionOrder {
		order[name] = i
	}

	seen := make(map[models.SectionName]bool)
	out := make([]models.SectionPlan, 0, len(in))
	for _, s := range in {
		name := models.SectionName(strings.ToLower(strings.TrimSpace(s.Name)))
		if alias, ok := sectionAliases[string(name)]; ok {
			name = alias
		}
		if _, ok := order[name]; !ok {
			return nil, fmt.Errorf("unknown section %q", s.Name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate section %q", name)
		}
		seen[name] = true

		if s.MeasureCount < 1 {
			return nil, fmt.Errorf("section %s: measureCount must be at least 1", name)
		}
		if len(s.HarmonicTemplate) == 0 {
			return nil, fmt.Errorf("section %s: empty harmonic template", name)
		}
		if len(s.HarmonicTemplate) > s.MeasureCount*harmony.MaxChordsPerMeasure {
			return nil, fmt.Errorf("section %s: %d numerals do not fit %d measures", name, len(s.HarmonicTemplate), s.MeasureCount)
		}
		template := make([]string, len(s.HarmonicTemplate))
		for i, numeral := range s.HarmonicTemplate {
			numeral = strings.TrimSpace(numeral)
			if _, err := theory.ParseNumeral(numeral); err != nil {
				return nil, fmt.Errorf("section %s: %w", name, err)
			}
			template[i] = numeral
		}
		contour := models.Contour(strings.ToLower(strings.TrimSpace(s.ContourTag)))
		if !contour.Valid() {
			return nil, fmt.Errorf("section %s: unknown contour %q", name, s.ContourTag)
		}

		out = append(out, models.SectionPlan{
			Name:             name,
			Measures:         s.MeasureCount,
			HarmonicTemplate: template,
			Contour:          contour,
		})
	}
	if !seen[models.SectionVariation] {
		return nil, fmt.Errorf("missing variation section")
	}
	sort.SliceStable(out, func(i, j int) bool { return order[out[i].Name] < order[out[j].Name] })
	return out, nil
}

// checkFits applies the same variation stretch the assembler will use and
// rejects plans that cannot be stretched into the window, or whose variation
// template no longer fits the stretched measure count.
func checkFits(plan *models.StructuralPlan, minSeconds, maxSeconds float64) error {
	if maxSeconds <= 0 {
		return nil
	}
	asm := score.NewAssembler(minSeconds, maxSeconds)
	if asm.Fits(plan) {
		return nil
	}
	stretched, err := asm.Stretch(plan)
	if err != nil {
		return err
	}
	for _, s := range stretched.Sections {
		if s.Name != models.SectionVariation {
			continue
		}
		if len(s.HarmonicTemplate) > s.Measures*harmony.MaxChordsPerMeasure {
			return fmt.Errorf("variation stretched to %d measures cannot hold %d numerals", s.Measures, len(s.HarmonicTemplate))
		}
	}
	return nil
}
