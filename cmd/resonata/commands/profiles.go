package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/style"
)

type profileSummary struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
	Tempo       string `yaml:"tempo" json:"tempo"`
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available composer style profiles and moods",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		var (
			store *style.Store
			err   error
		)
		if cfg.StyleProfilesPath != "" {
			store, err = style.LoadFile(cfg.StyleProfilesPath)
		} else {
			store, err = style.LoadDefault()
		}
		if err != nil {
			return err
		}

		out := struct {
			Composers []profileSummary `yaml:"composers" json:"composers"`
			Moods     []models.Mood    `yaml:"moods" json:"moods"`
		}{Moods: models.Moods}
		for _, id := range store.List() {
			p, err := store.Profile(id)
			if err != nil {
				return err
			}
			out.Composers = append(out.Composers, profileSummary{
				ID:          p.ComposerID,
				Description: style.Summary(p),
				Tempo:       tempoRange(p),
			})
		}
		return printResult(cmd.OutOrStdout(), out)
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func tempoRange(p *models.StyleProfile) string {
	return fmt.Sprintf("%d-%d bpm", p.Tempo.Min, p.Tempo.Max)
}
