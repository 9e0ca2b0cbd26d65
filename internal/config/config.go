package config

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/shelldash/internal/errors"
	"github.com/hpungsan/shelldash/internal/logging"
)

// FileName is the config file name inside the data directory.
const FileName = "config.json"

// Environment variables that override API keys from the file.
const (
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvOpenWeatherKey = "OPENWEATHER_API_KEY"
)

// OpenAI holds chat completion settings.
type OpenAI struct {
	APIKey string `json:"api_key,omitempty"`
	// Model is the default model; the chat service falls back to a fixed model when empty.
	Model string `json:"model,omitempty"`
	// BaseURL overrides https://api.openai.com/v1 (useful for compatible gateways).
	BaseURL string `json:"base_url,omitempty"`
}

// OpenWeather holds current-weather settings. Empty City and Units fall back to
// DefaultCity and DefaultUnits.
type OpenWeather struct {
	APIKey string `json:"api_key,omitempty"`
	City   string `json:"city,omitempty"`
	Units  string `json:"units,omitempty"`
}

// Defaults for OpenWeather.
const (
	DefaultCity  = "Oslo"
	DefaultUnits = "metric"
)

// Config holds application configuration.
// It is treated as read-only once returned by a Source.
type Config struct {
	OpenAI      OpenAI      `json:"openai"`
	OpenWeather OpenWeather `json:"openweather"`

	// RSSFeeds lists feed URLs polled by the rss command and /api/rss.
	RSSFeeds []string `json:"rss_feeds,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// CityOrDefault returns the configured city or DefaultCity.
func (w OpenWeather) CityOrDefault() string {
	if strings.TrimSpace(w.City) == "" {
		return DefaultCity
	}
	return w.City
}

// UnitsOrDefault returns the configured units or DefaultUnits.
func (w OpenWeather) UnitsOrDefault() string {
	if strings.TrimSpace(w.Units) == "" {
		return DefaultUnits
	}
	return w.Units
}

// Load loads configuration from dir/config.json.
// A missing or undecodable file yields a *errors.ReadError; callers choose how to degrade.
func Load(dir string) (*Config, error) {
	return loadFile(filepath.Join(dir, FileName))
}

// loadFile loads configuration from a specific file path.
func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewReadError(configPath, errors.ReadMissing, err)
		}
		return nil, errors.NewReadError(configPath, errors.ReadIO, err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewReadError(configPath, errors.ReadCorrupt, err)
	}

	cfg.RSSFeeds = cleanList(cfg.RSSFeeds)
	cfg.DisabledTools = cleanList(cfg.DisabledTools)
	return cfg, nil
}

// Resolve turns a Load result into a usable config: read errors degrade to an
// empty config (logged unless the file is simply absent), then env overrides apply.
func Resolve(cfg *Config, err error, getenv func(string) string, logger *zap.Logger) *Config {
	if err != nil {
		if !errors.IsReadKind(err, errors.ReadMissing) {
			logging.OrNop(logger).Warn("config unreadable, using empty config", zap.Error(err))
		}
		cfg = nil
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return ApplyEnv(cfg, getenv)
}

// ApplyEnv returns a copy of cfg with API keys overridden by non-empty env vars.
func ApplyEnv(cfg *Config, getenv func(string) string) *Config {
	result := *cfg
	result.RSSFeeds = append([]string(nil), cfg.RSSFeeds...)
	result.DisabledTools = append([]string(nil), cfg.DisabledTools...)
	if getenv == nil {
		return &result
	}
	if key := strings.TrimSpace(getenv(EnvOpenAIKey)); key != "" {
		result.OpenAI.APIKey = key
	}
	if key := strings.TrimSpace(getenv(EnvOpenWeatherKey)); key != "" {
		result.OpenWeather.APIKey = key
	}
	return &result
}

// cleanList trims whitespace and removes empty entries and duplicates.
func cleanList(in []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(in))

	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
