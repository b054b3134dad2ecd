package summarize

import "time"

// Config holds summarization settings loaded from the summary config section.
type Config struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Models     []string      `mapstructure:"models"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ChunkSize  int           `mapstructure:"chunk_size"`
	PromptsDir string        `mapstructure:"prompts_dir"`
	Translate  bool          `mapstructure:"translate"`
}
