// Package config loads boardbi configuration in layers: built-in defaults,
// an optional YAML file, a .env file, then environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Monday  MondayConfig  `yaml:"monday"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Cache   CacheConfig   `yaml:"cache"`
	Summary SummaryConfig `yaml:"summary"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type MondayConfig struct {
	APIToken            string `yaml:"api_token"`
	WorkOrdersBoardID   string `yaml:"work_orders_board_id"`
	DealsBoardID        string `yaml:"deals_board_id"`
	WorkOrdersBoardName string `yaml:"work_orders_board_name"`
	DealsBoardName      string `yaml:"deals_board_name"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type SummaryConfig struct {
	MaxContextTokens int    `yaml:"max_context_tokens"`
	PrimaryCurrency  string `yaml:"primary_currency"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		Monday: MondayConfig{
			WorkOrdersBoardName: "work order",
			DealsBoardName:      "deal",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Summary: SummaryConfig{
			MaxContextTokens: 4000,
			PrimaryCurrency:  "INR",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the default file location. The Monday API
// token is required; a missing Gemini key is allowed (chat degrades with a
// clear message instead of failing at startup).
func Load() (Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration with an explicit YAML file path. An empty
// path falls back to $XDG_CONFIG_HOME/boardbi/config.yaml, which may be
// absent.
func LoadFrom(path string) (Config, error) {
	cfg := defaults()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		case explicit:
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	// .env is a convenience for local development; absence is not an error.
	godotenv.Load()
	applyEnvOverrides(&cfg)

	if cfg.Monday.APIToken == "" {
		return Config{}, fmt.Errorf("missing required config: Monday API token. Set MONDAY_API_KEY")
	}

	return cfg, nil
}

func defaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "boardbi", "config.yaml")
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Monday.APIToken, "MONDAY_API_KEY")
	setString(&cfg.Monday.WorkOrdersBoardID, "WORK_ORDERS_BOARD_ID")
	setString(&cfg.Monday.DealsBoardID, "DEALS_BOARD_ID")
	setString(&cfg.Monday.WorkOrdersBoardName, "BOARDBI_WORK_ORDERS_BOARD_NAME")
	setString(&cfg.Monday.DealsBoardName, "BOARDBI_DEALS_BOARD_NAME")
	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "BOARDBI_GEMINI_MODEL")
	setString(&cfg.Summary.PrimaryCurrency, "BOARDBI_PRIMARY_CURRENCY")
	setString(&cfg.Log.Level, "BOARDBI_LOG_LEVEL")
	setInt(&cfg.Server.Port, "BOARDBI_PORT")
	setInt(&cfg.Summary.MaxContextTokens, "BOARDBI_MAX_CONTEXT_TOKENS")
	setDuration(&cfg.Cache.TTL, "BOARDBI_CACHE_TTL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
