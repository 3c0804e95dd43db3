// Package config loads the gamerec YAML configuration by environment name.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds the gamerec configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Similarity SimilarityConfig `yaml:"similarity"`
	IGDB       IGDBConfig       `yaml:"igdb"`
	Discord    DiscordConfig    `yaml:"discord"`
	Agent      AgentConfig      `yaml:"agent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// StorageConfig holds database settings.
type StorageConfig struct {
	SQLitePath       string `yaml:"sqlite_path"`
	VecExtensionPath string `yaml:"vec_extension_path"` // optional sqlite-vec loadable extension
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	Provider   string `yaml:"provider"`
	CacheSkip  bool   `yaml:"cache_skip"` // disable the local embedding cache

	// Token budget. Zero limits disable the corresponding window.
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"`
	BudgetAction      string `yaml:"budget_action"` // warn (default) or reject
}

// SimilarityConfig holds engine settings.
type SimilarityConfig struct {
	Metric            string  `yaml:"metric"` // cosine (default) or euclidean
	MaxLimit          int     `yaml:"max_limit"`
	MinScoreThreshold float64 `yaml:"min_score_threshold"`
}

// IGDBConfig holds the catalog API credentials.
type IGDBConfig struct {
	ClientID         string `yaml:"client_id"`
	ClientSecret     string `yaml:"client_secret"`
	TokenURL         string `yaml:"token_url"`
	RefreshMarginSec int    `yaml:"refresh_margin_sec"`
}

// DiscordConfig holds webhook notification settings.
type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Username   string `yaml:"username"`
}

// AgentConfig holds the external decision-agent command.
type AgentConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	TimeoutSec int      `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local,
// dev, prod). CONFIG_PATH overrides the file location.
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting
// to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "var/gamerec.db"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 768
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.BudgetAction == "" {
		c.Embedding.BudgetAction = "warn"
	}
	if c.Similarity.Metric == "" {
		c.Similarity.Metric = "cosine"
	}
	if c.Similarity.MaxLimit <= 0 {
		c.Similarity.MaxLimit = 20
	}
	if c.Similarity.MinScoreThreshold <= 0 {
		c.Similarity.MinScoreThreshold = 0.05
	}
	if c.IGDB.TokenURL == "" {
		c.IGDB.TokenURL = "https://id.twitch.tv/oauth2/token"
	}
	if c.IGDB.RefreshMarginSec <= 0 {
		c.IGDB.RefreshMarginSec = 300
	}
	if c.Discord.Username == "" {
		c.Discord.Username = "GameRec Bot"
	}
	if c.Agent.TimeoutSec <= 0 {
		c.Agent.TimeoutSec = 300
	}
}

// Validate checks settings that have no sane fallback.
func (c *Config) Validate() error {
	if c.Similarity.Metric != "cosine" && c.Similarity.Metric != "euclidean" {
		return fmt.Errorf("similarity.metric must be cosine or euclidean, got %q", c.Similarity.Metric)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.BudgetAction != "warn" && c.Embedding.BudgetAction != "reject" {
		return fmt.Errorf("embedding.budget_action must be warn or reject, got %q", c.Embedding.BudgetAction)
	}
	if c.Similarity.MinScoreThreshold < 0 || c.Similarity.MinScoreThreshold >= 1 {
		return fmt.Errorf("similarity.min_score_threshold must be in [0,1), got %v",
			c.Similarity.MinScoreThreshold)
	}
	return nil
}

func findConfigPath(env string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return filepath.Join("configs", env+".yaml")
}

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// expandEnvVars replaces ${VAR} placeholders with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}
