// Package config provides unified configuration loading for the support
// engine. Supports YAML files, environment variables, and programmatic
// overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the support engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Cache         CacheConfig         `yaml:"cache"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Generative    GenerativeConfig    `yaml:"generative"`
	Matching      MatchingConfig      `yaml:"matching"`
	Chat          ChatConfig          `yaml:"chat"`
	Guardrails    GuardrailConfig     `yaml:"guardrails"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// DatabaseConfig holds FAQ store settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // sqlite or postgres
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig holds Postgres-specific settings.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// CacheConfig holds shared TTL cache settings.
type CacheConfig struct {
	Driver     string      `yaml:"driver"` // memory or redis
	MaxEntries int         `yaml:"max_entries"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Enabled   bool          `yaml:"enabled"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	Dimension int           `yaml:"dimension"`
	Timeout   time.Duration `yaml:"timeout"`
}

// GenerativeConfig holds generative provider settings.
type GenerativeConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// MatchingConfig holds FAQ matching settings.
type MatchingConfig struct {
	SemanticThreshold float64 `yaml:"semantic_threshold"`
	SemanticLimit     int     `yaml:"semantic_limit"`
}

// ChatConfig holds chat pipeline settings.
type ChatConfig struct {
	DedupTTL     time.Duration `yaml:"dedup_ttl"`
	LockTTL      time.Duration `yaml:"lock_ttl"`
	HistoryTTL   time.Duration `yaml:"history_ttl"`
	HistoryTurns int           `yaml:"history_turns"`
}

// GuardrailConfig points at the versioned rule tables.
type GuardrailConfig struct {
	RulesPath string `yaml:"rules_path"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for
// development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     3 * time.Minute,
			IdleTimeout:      120 * time.Second,
			RequestTimeout:   3 * time.Minute,
			GracefulShutdown: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path: "/tmp/support-engine.db",
			},
		},
		Cache: CacheConfig{
			Driver:     "memory",
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Embedding: EmbeddingConfig{
			Enabled:   false,
			Model:     "text-embedding-3-small",
			Dimension: 768,
			Timeout:   30 * time.Second,
		},
		Generative: GenerativeConfig{
			Model:   "gpt-4o-mini",
			Timeout: 2 * time.Minute,
		},
		Matching: MatchingConfig{
			SemanticThreshold: 0.4,
			SemanticLimit:     5,
		},
		Chat: ChatConfig{
			DedupTTL:     5 * time.Minute,
			LockTTL:      60 * time.Second,
			HistoryTTL:   24 * time.Hour,
			HistoryTurns: 6,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "debug",
			LogFormat: "json",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid database driver: %s", c.Database.Driver)
	}
	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}
	if c.Matching.SemanticThreshold < 0 || c.Matching.SemanticThreshold > 1 {
		return fmt.Errorf("semantic_threshold must be in [0, 1]")
	}
	if c.Embedding.Enabled && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding enabled without api key")
	}
	return nil
}

// DatabaseDriver returns the database/sql driver name for the
// configured backend.
func (c *Config) DatabaseDriver() string {
	if c.Database.Driver == "postgres" {
		return "postgres"
	}
	return "sqlite3"
}

// DatabaseDSN returns the connection string for the configured backend.
func (c *Config) DatabaseDSN() string {
	if c.Database.Driver == "postgres" {
		return c.Database.Postgres.DSN
	}
	return c.Database.SQLite.Path
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		if strings.HasPrefix(v, "sqlite:") {
			cfg.Database.Driver = "sqlite"
			cfg.Database.SQLite.Path = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.Database.Driver = "postgres"
			cfg.Database.Postgres.DSN = v
		}
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.Enabled = true
		cfg.Embedding.APIKey = v
	}

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}

	if v := os.Getenv("GENERATIVE_API_KEY"); v != "" {
		cfg.Generative.APIKey = v
	}

	if v := os.Getenv("GENERATIVE_MODEL"); v != "" {
		cfg.Generative.Model = v
	}

	if v := os.Getenv("GENERATIVE_BASE_URL"); v != "" {
		cfg.Generative.BaseURL = v
	}

	if v := os.Getenv("GUARDRAIL_RULES_PATH"); v != "" {
		cfg.Guardrails.RulesPath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
