package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"musemind/internal/config"
)

var (
	genAgent     string
	genStyle     string
	genCorpus    string
	genEmotion   string
	genKeywords  []string
	genLineCount int
	genText      string
	genGenre     string
	genMood      string
	genJSON      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run a single generation request",
	Long: `Run one generation request without starting the server.

Examples:
  musemind generate --style haiku --keywords spring,rain --emotion calm
  musemind generate --agent morph --text "rework this paragraph"
  musemind generate --agent correct --text "their going to the store"
  musemind generate --agent plot --genre mystery --mood melancholic`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		if err := cfgMgr.Get().Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		eng, _, err := buildEngine(cfgMgr, logger)
		if err != nil {
			return err
		}

		raw := map[string]any{"agent": genAgent}
		if genStyle != "" {
			raw["style"] = genStyle
		}
		if genCorpus != "" {
			raw["corpus"] = genCorpus
		}
		if genEmotion != "" {
			raw["emotion"] = genEmotion
		}
		if len(genKeywords) > 0 {
			raw["keywords"] = strings.Join(genKeywords, ", ")
		}
		if genLineCount > 0 {
			raw["line_count"] = genLineCount
		}
		if genText != "" {
			raw["text"] = genText
		}
		if genGenre != "" {
			raw["genre"] = genGenre
		}
		if genMood != "" {
			raw["mood"] = genMood
		}

		result := eng.Submit(ctx, raw)

		if genJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		if result["status"] == "error" {
			return fmt.Errorf("%s: %v", result["error_kind"], result["error"])
		}
		fmt.Println(result["text"])
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&genAgent, "agent", "poem", "Agent: poem, morph, correct, or plot")
	generateCmd.Flags().StringVar(&genStyle, "style", "", "Generation style (poem agent)")
	generateCmd.Flags().StringVar(&genCorpus, "corpus", "", "Corpus to retrieve from")
	generateCmd.Flags().StringVar(&genEmotion, "emotion", "", "Emotion to convey")
	generateCmd.Flags().StringSliceVar(&genKeywords, "keywords", nil, "Keywords to incorporate")
	generateCmd.Flags().IntVar(&genLineCount, "line-count", 0, "Requested line count")
	generateCmd.Flags().StringVar(&genText, "text", "", "Input text (morph and correct agents)")
	generateCmd.Flags().StringVar(&genGenre, "genre", "", "Plot genre")
	generateCmd.Flags().StringVar(&genMood, "mood", "", "Plot mood")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "Print the full result as JSON")

	rootCmd.AddCommand(generateCmd)
}
