package gonext

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	apiKeyFlag string
)

var rootCmd = &cobra.Command{
	Use:           "gonext",
	Short:         "gonext finds nearby places that fit your mood",
	Long:          "gonext is a local-first CLI that suggests nearby places for a mood, keeps favorites, and reminds you of mood events on their day.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Geoapify API key (overrides config and GONEXT_GEOAPIFY_API_KEY)")
}
