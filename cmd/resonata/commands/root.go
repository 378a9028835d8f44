package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/resonata/resonata-api/internal/config"
)

var (
	profilesPath string
	jsonOutput   bool
)

var rootCmd = &cobra.Command{
	Use:           "resonata",
	Short:         "Style-guided solo piano composition",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the environment the same way the server does. History
// and rate limiting stay off for local runs.
func loadConfig() *config.Config {
	_ = godotenv.Load()
	cfg := config.Load()
	cfg.DatabaseURL = ""
	cfg.RateLimitRequests = 0
	cfg.CloudWatchEnabled = false
	if profilesPath != "" {
		cfg.StyleProfilesPath = profilesPath
	}
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profilesPath, "profiles", "", "style profile YAML (defaults to the built-in table)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON instead of YAML")
}
