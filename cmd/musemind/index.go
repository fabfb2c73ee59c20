package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"musemind/internal/config"
	"musemind/internal/embedding"
	"musemind/internal/indexer"
)

var (
	indexCorpus    string
	indexInput     string
	indexOutput    string
	indexSentences int
	indexOverlap   int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build a corpus index from plain-text files",
	Long: `Chunk and embed every .txt file under an input directory, writing the
vector index the server loads at startup.

Examples:
  musemind index --corpus kafka --input ./texts/kafka --output ./vectorstores/kafka.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		if indexOutput == "" {
			corpusCfg, ok := cfg.Corpora[indexCorpus]
			if !ok {
				return fmt.Errorf("corpus %q is not configured and no --output given", indexCorpus)
			}
			indexOutput = corpusCfg.Path
		}

		// Index build always embeds with the document task type
		embedder, err := embedding.NewGenAIEngine(
			config.ResolveEnvVars(cfg.Embedding.APIKey),
			cfg.Embedding.Model,
			embedding.TaskRetrievalDocument,
		)
		if err != nil {
			return fmt.Errorf("failed to create embedding engine: %w", err)
		}

		builder := indexer.NewBuilder(
			indexer.NewChunker(indexSentences, indexOverlap),
			embedder,
			logger,
		)
		n, err := builder.Build(ctx, indexCorpus, indexInput, indexOutput)
		if err != nil {
			return err
		}

		fmt.Printf("wrote %d chunks to %s\n", n, indexOutput)
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexCorpus, "corpus", "", "Corpus name to build")
	indexCmd.Flags().StringVar(&indexInput, "input", "", "Directory of .txt source files")
	indexCmd.Flags().StringVar(&indexOutput, "output", "", "Index output path (default: configured corpus path)")
	indexCmd.Flags().IntVar(&indexSentences, "sentences", 5, "Sentences per chunk")
	indexCmd.Flags().IntVar(&indexOverlap, "overlap", 0, "Overlapping sentences between chunks")
	_ = indexCmd.MarkFlagRequired("corpus")
	_ = indexCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(indexCmd)
}
