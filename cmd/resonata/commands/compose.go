package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/resonata/resonata-api/internal/app"
	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/theory"
)

var composeOpts struct {
	composer   string
	mood       string
	innovation float64
	seed       int64
	output     string
	remote     bool
}

type sectionSummary struct {
	Name     string   `yaml:"name" json:"name"`
	Measures int      `yaml:"measures" json:"measures"`
	Contour  string   `yaml:"contour" json:"contour"`
	Template []string `yaml:"template" json:"template"`
	Opening  string   `yaml:"opening,omitempty" json:"opening,omitempty"`
}

type composeSummary struct {
	Output     string           `yaml:"output" json:"output"`
	Title      string           `yaml:"title" json:"title"`
	Seed       int64            `yaml:"seed" json:"seed"`
	Key        string           `yaml:"key" json:"key"`
	TempoBPM   int              `yaml:"tempo_bpm" json:"tempoBPM"`
	Duration   float64          `yaml:"duration_seconds" json:"durationSeconds"`
	PlanSource string           `yaml:"plan_source" json:"planSource"`
	Sections   []sectionSummary `yaml:"sections" json:"sections"`
}

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose a piece and write it as a MIDI file",
	Long: `Compose a short solo piano piece in a composer's style.

Guidance uses the local rule-based planner unless --remote is set and
OPENAI_API_KEY or GEMINI_API_KEY is configured.

Example:
  resonata compose --composer chopin --mood melancholic --innovation 0.2 -o nocturne.mid
  resonata compose --composer satie --mood serene --seed 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mood, err := models.ParseMood(composeOpts.mood)
		if err != nil {
			return err
		}

		cfg := loadConfig()
		if !composeOpts.remote {
			cfg.GuidanceProvider = "none"
		}

		application, err := app.Build(cmd.Context(), cfg, "cli")
		if err != nil {
			return err
		}
		defer application.Close()

		req := models.GenerationRequest{
			ComposerID:      composeOpts.composer,
			Mood:            mood,
			InnovationLevel: composeOpts.innovation,
			ClientID:        "cli",
		}
		if cmd.Flags().Changed("seed") {
			seed := composeOpts.seed
			req.Seed = &seed
		}

		result, err := application.Deps.Composition.Compose(cmd.Context(), req)
		if err != nil {
			return err
		}

		output := composeOpts.output
		if output == "" {
			output = fmt.Sprintf("resonata-%s-%s-%d.mid", strings.ToLower(composeOpts.composer), mood, result.Seed)
		}
		if err := os.WriteFile(output, result.MIDI, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}

		summary := composeSummary{
			Output:     output,
			Title:      result.Score.Title,
			Seed:       result.Seed,
			Key:        result.Plan.Key,
			TempoBPM:   result.Plan.TempoBPM,
			Duration:   result.Score.DurationSeconds,
			PlanSource: result.PlanSource,
		}
		for _, sec := range result.Score.Sections {
			entry := sectionSummary{
				Name:     string(sec.Plan.Name),
				Measures: sec.Plan.Measures,
				Contour:  string(sec.Plan.Contour),
				Template: sec.Plan.HarmonicTemplate,
			}
			if len(sec.RightHand) > 0 {
				entry.Opening = theory.MIDIToNoteName(sec.RightHand[0].MidiNoteNumber)
			}
			summary.Sections = append(summary.Sections, entry)
		}
		return printResult(cmd.OutOrStdout(), summary)
	},
}

func init() {
	composeCmd.Flags().StringVar(&composeOpts.composer, "composer", "", "composer id (see 'resonata profiles')")
	composeCmd.Flags().StringVar(&composeOpts.mood, "mood", "", "mood: melancholic, nostalgic, serene, hopeful, dramatic or passionate")
	composeCmd.Flags().Float64Var(&composeOpts.innovation, "innovation", 0.3, "innovation level in [0, 1]")
	composeCmd.Flags().Int64Var(&composeOpts.seed, "seed", 0, "seed for a reproducible piece")
	composeCmd.Flags().StringVarP(&composeOpts.output, "output", "o", "", "output MIDI path")
	composeCmd.Flags().BoolVar(&composeOpts.remote, "remote", false, "ask the configured guidance provider for the plan")
	_ = composeCmd.MarkFlagRequired("composer")
	_ = composeCmd.MarkFlagRequired("mood")

	rootCmd.AddCommand(composeCmd)
}
