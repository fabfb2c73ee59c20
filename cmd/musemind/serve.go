package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"musemind/internal/cache"
	"musemind/internal/config"
	"musemind/internal/corpus"
	"musemind/internal/embedding"
	"musemind/internal/engine"
	"musemind/internal/prompts"
	"musemind/internal/providers"
	"musemind/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the musemind server",
	Long: `Start the musemind HTTP server.

The server provides:
  - /health           - Server health check
  - /api/generate     - Run a generation request
  - /api/styles       - List generation styles
  - /api/corpora      - List configured and loaded corpora
  - /api/cache        - Inspect (GET) or clear (DELETE) the result cache
  - /api/calls        - Recent backend calls

Examples:
  musemind serve                    # Start on default port 8080
  musemind serve --port 3000        # Start on custom port
  musemind serve --host 0.0.0.0     # Bind to all interfaces`,
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

		eng, corpora, err := buildEngine(cfgMgr, logger)
		if err != nil {
			return err
		}

		// Hot-reload providers and sampling parameters on config change
		cfgMgr.OnChange(func(c *config.Config) {
			eng.SetParams(paramsFromConfig(c))
			logger.Info("engine parameters reloaded from config")
		})
		cfgMgr.WatchConfig()

		srv, err := server.New(server.Config{
			Host:    serveHost,
			Port:    servePort,
			Engine:  eng,
			Corpora: corpora,
			Logger:  logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// buildEngine wires the embedding backend, corpus registry, prompt
// catalog, provider registry, and cache into a ready engine.
func buildEngine(cfgMgr *config.Manager, logger *slog.Logger) (*engine.Engine, *corpus.Registry, error) {
	cfg := cfgMgr.Get()

	embedder, err := embedding.NewGenAIEngine(
		config.ResolveEnvVars(cfg.Embedding.APIKey),
		cfg.Embedding.Model,
		cfg.Embedding.TaskType,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding engine: %w", err)
	}

	corpora := corpus.NewRegistry(embedder, logger)
	corpora.LoadAll(cfg.EnabledCorpora())

	catalog, err := prompts.NewCatalog()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load prompt catalog: %w", err)
	}

	registry := providers.NewRegistryFromConfig(cfg.ToProviderRegistryConfig())
	registry.SetLogger(logger)
	cfgMgr.OnChange(func(c *config.Config) {
		registry.Reload(c.ToProviderRegistryConfig())
		logger.Info("provider registry reloaded from config")
	})

	eng := engine.New(engine.Config{
		Validator: engine.NewValidator(corpora),
		Searcher:  corpora,
		Catalog:   catalog,
		Providers: registry,
		Cache:     cache.New(),
		Params:    paramsFromConfig(cfg),
		Logger:    logger,
	})
	return eng, corpora, nil
}

func paramsFromConfig(c *config.Config) engine.Params {
	return engine.Params{
		Provider:    c.Defaults.Provider,
		TopK:        c.Defaults.TopK,
		Temperature: c.Defaults.Temperature,
		TopP:        c.Defaults.TopP,
		MaxTokens:   c.Defaults.MaxTokens,
		MaxRetries:  c.Defaults.MaxRetries,
	}
}
