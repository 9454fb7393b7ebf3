// Package config loads the service configuration from an optional YAML file,
// with environment variables (and a .env file) taking precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	DBPath    string          `yaml:"db_path"`
	Addr      string          `yaml:"addr"`
	LogPath   string          `yaml:"log_path"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Telegram  TelegramConfig  `yaml:"telegram"`
}

// Duration accepts "30s" style values in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// EmbeddingConfig points at an OpenAI-compatible embeddings endpoint.
type EmbeddingConfig struct {
	BaseURL    string   `yaml:"base_url"`
	APIKey     string   `yaml:"api_key"`
	Model      string   `yaml:"model"`
	MaxRetries int      `yaml:"max_retries"`
	Timeout    Duration `yaml:"timeout"`
}

// TelegramConfig holds the bot credentials. An empty token disables the bot.
type TelegramConfig struct {
	Token string `yaml:"token"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath: "whereismy.sqlite3",
		Addr:   ":8080",
		Embedding: EmbeddingConfig{
			BaseURL:    "http://localhost:8000/v1",
			Model:      "paraphrase-multilingual-MiniLM-L12-v2",
			MaxRetries: 3,
			Timeout:    Duration(30 * time.Second),
		},
	}
}

// Load reads the config file at path (missing file means defaults), then
// applies .env and environment overrides. Secrets are expected through the
// environment, not the YAML file.
func Load(path string) (*Config, error) {
	// Missing .env files are fine; explicit ones are loaded by godotenv
	// before the overrides below are read.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WHEREISMY_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WHEREISMY_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("WHEREISMY_LOG"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
}
