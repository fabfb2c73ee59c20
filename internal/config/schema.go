package config

// Config holds musemind configuration.
// Loaded from ./config.yaml or ~/.musemind/config.yaml, with MUSEMIND_
// environment overrides.
type Config struct {
	Providers map[string]ProviderCfg `mapstructure:"providers" yaml:"providers"`
	Defaults  DefaultsCfg            `mapstructure:"defaults" yaml:"defaults"`
	Corpora   map[string]CorpusCfg   `mapstructure:"corpora" yaml:"corpora"`
	Embedding EmbeddingCfg           `mapstructure:"embedding" yaml:"embedding"`
}

// ProviderCfg configures a text-generation provider.
type ProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "gemini", "openai"
	Model     string  `mapstructure:"model" yaml:"model"`           // Model name
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies the default provider and sampling parameters.
type DefaultsCfg struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	TopK        int     `mapstructure:"top_k" yaml:"top_k"` // Chunks retrieved per request
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	TopP        float64 `mapstructure:"top_p" yaml:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	MaxRetries  int     `mapstructure:"max_retries" yaml:"max_retries"`
}

// CorpusCfg maps a logical corpus name to its persisted index.
type CorpusCfg struct {
	Path    string `mapstructure:"path" yaml:"path"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// EmbeddingCfg configures the embedding backend used for index build
// and query embedding.
type EmbeddingCfg struct {
	Model    string `mapstructure:"model" yaml:"model"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	TaskType string `mapstructure:"task_type" yaml:"task_type"`
}

// DefaultConfig returns configuration with sensible defaults. Sampling
// defaults match the tuning the poetry agents shipped with.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]ProviderCfg{
			"gemini": {
				Type:      "gemini",
				Model:     "gemini-2.0-flash",
				APIKey:    "${GOOGLE_API_KEY}",
				RateLimit: 2.0,
				Enabled:   true,
			},
			"openai": {
				Type:      "openai",
				Model:     "gpt-4o-mini",
				APIKey:    "${OPENAI_API_KEY}",
				RateLimit: 2.0,
				Enabled:   false,
			},
		},
		Defaults: DefaultsCfg{
			Provider:    "gemini",
			TopK:        4,
			Temperature: 0.8,
			TopP:        0.95,
			MaxTokens:   700,
			MaxRetries:  4,
		},
		Corpora: map[string]CorpusCfg{
			"kafka":       {Path: "./vectorstores/kafka.json", Enabled: true},
			"dostoyevsky": {Path: "./vectorstores/dostoyevsky.json", Enabled: true},
			"rumi":        {Path: "./vectorstores/rumi.json", Enabled: true},
			"philosophy":  {Path: "./vectorstores/philosophy.json", Enabled: true},
			"plot_ideas":  {Path: "./vectorstores/plot_ideas.json", Enabled: true},
		},
		Embedding: EmbeddingCfg{
			Model:    "gemini-embedding-001",
			APIKey:   "${GOOGLE_API_KEY}",
			TaskType: "SEMANTIC_SIMILARITY",
		},
	}
}

// GetProvider returns a provider config by name.
func (c *Config) GetProvider(name string) (ProviderCfg, bool) {
	cfg, ok := c.Providers[name]
	return cfg, ok
}

// EnabledCorpora returns the corpus name -> index path mapping for all
// enabled corpora.
func (c *Config) EnabledCorpora() map[string]string {
	result := make(map[string]string)
	for name, cfg := range c.Corpora {
		if cfg.Enabled {
			result[name] = cfg.Path
		}
	}
	return result
}
