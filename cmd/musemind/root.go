package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"musemind/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "musemind",
	Short: "Retrieval-augmented writing assistant",
	Long: `Musemind generates poems, text morphs, corrections, and plot synopses,
grounding every generation in passages retrieved from literary corpora.

The pipeline includes:
  - Vector search over embedded corpus chunks
  - Style-specific prompt composition from templates
  - Multi-provider LLM generation with rate limiting and retries
  - Result caching keyed on the full request`,
	Version: version.GitRelease,
}

func init() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.musemind/config.yaml)",
	)

	rootCmd.AddCommand(versionCmd)
}
