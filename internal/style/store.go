package style

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/theory"
	"github.com/resonata/resonata-api/pkg/embedded"
)

type profileFile struct {
	Profiles []models.StyleProfile `yaml:"profiles"`
}

// Store is an immutable, read-only table of composer style profiles
type Store struct {
	profiles map[string]*models.StyleProfile
}

// LoadDefault loads the embedded profile table
func LoadDefault() (*Store, error) {
	return Parse(embedded.StyleProfilesYAML)
}

// LoadFile loads a profile table from disk, falling back to the embedded
// table when path is empty.
func LoadFile(path string) (*Store, error) {
	if path == "" {
		return LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style profiles: %w", err)
	}
	return Parse(data)
}

// Parse builds a store from YAML and validates every profile
func Parse(data []byte) (*Store, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse style profiles: %w", err)
	}
	return New(file.Profiles)
}

// New builds a store from already-decoded profiles
func New(profiles []models.StyleProfile) (*Store, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no style profiles defined")
	}
	s := &Store{profiles: make(map[string]*models.StyleProfile, len(profiles))}
	for i := range profiles {
		p := profiles[i]
		if err := validate(&p); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.ComposerID, err)
		}
		id := normalize(p.ComposerID)
		if _, dup := s.profiles[id]; dup {
			return nil, fmt.Errorf("duplicate style profile %q", p.ComposerID)
		}
		s.profiles[id] = &p
	}
	return s, nil
}

// Profile returns the profile for a composer id (case-insensitive)
func (s *Store) Profile(composerID string) (*models.StyleProfile, error) {
	p, ok := s.profiles[normalize(composerID)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownComposer, composerID)
	}
	return p, nil
}

// List returns the known composer ids in sorted order
func (s *Store) List() []string {
	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Summary renders a one-paragraph description used in guidance prompts
func Summary(p *models.StyleProfile) string {
	parts := []string{p.DisplayName}
	if p.Era != "" {
		parts[0] += " (" + p.Era + ")"
	}
	if len(p.Characteristics) > 0 {
		parts = append(parts, strings.Join(p.Characteristics, "; "))
	}
	return strings.Join(parts, ": ")
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func validate(p *models.StyleProfile) error {
	if normalize(p.ComposerID) == "" {
		return fmt.Errorf("missing id")
	}
	if p.DisplayName == "" {
		p.DisplayName = p.ComposerID
	}
	if len(p.TypicalKeys) == 0 {
		return fmt.Errorf("no typical keys")
	}
	for _, k := range p.TypicalKeys {
		if _, err := theory.ParseKey(k); err != nil {
			return err
		}
	}
	if p.Tempo.Min <= 0 || p.Tempo.Min > p.Tempo.Max {
		return fmt.Errorf("invalid tempo range %d-%d", p.Tempo.Min, p.Tempo.Max)
	}
	if len(p.HarmonicTemplates) == 0 {
		return fmt.Errorf("no harmonic templates")
	}
	for _, tmpl := range p.HarmonicTemplates {
		if len(tmpl) == 0 {
			return fmt.Errorf("empty harmonic template")
		}
		for _, numeral := range tmpl {
			if _, err := theory.ParseNumeral(numeral); err != nil {
				return err
			}
		}
	}
	if len(p.RhythmPatterns) == 0 {
		return fmt.Errorf("no rhythm patterns")
	}
	for _, tag := range p.RhythmPatterns {
		if _, ok := theory.FeelFor(tag); !ok {
			return fmt.Errorf("unknown rhythm pattern %q", tag)
		}
	}
	if len(p.Contours) == 0 {
		return fmt.Errorf("no contours")
	}
	for _, c := range p.Contours {
		if !c.Valid() {
			return fmt.Errorf("unknown contour %q", c)
		}
	}
	for numeral, q := range p.QualityPreferences {
		switch q {
		case models.QualityMajor, models.QualityMinor, models.QualityDiminished, models.QualityAugmented:
		default:
			return fmt.Errorf("quality preference %s: unknown quality %q", numeral, q)
		}
	}
	return nil
}
