// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the engine host configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Backend BackendConfig `yaml:"backend"`
	Library LibraryConfig `yaml:"library"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig represents playback engine tuning.
type EngineConfig struct {
	MonitorIntervalMs int     `yaml:"monitor_interval_ms" default:"100" validate:"gte=10,lte=1000"`
	DefaultVolume     float64 `yaml:"default_volume" default:"0.7" validate:"gte=0,lte=1"`
	ShuffleWindow     int     `yaml:"shuffle_window" default:"3" validate:"gte=1,lte=10"`
}

// BackendConfig selects the audio backend and its settings.
type BackendConfig struct {
	Type     string         `yaml:"type" default:"beep"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// LibraryConfig represents the local music library.
type LibraryConfig struct {
	Dirs       []string `yaml:"dirs"`
	Extensions []string `yaml:"extensions" default:"[\".mp3\",\".wav\",\".flac\",\".ogg\"]"`
	MinSeconds float64  `yaml:"min_seconds" default:"0" validate:"gte=0"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info"`
	File   string `yaml:"file"`
}

// Default returns the configuration with all defaults applied and no
// file involved.
func Default() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	cfg.overrideFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file. Environment variables
// take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("TUNEBOX_LIBRARY_DIRS"); v != "" {
		c.Library.Dirs = splitAndTrim(v)
	}
	if v := os.Getenv("TUNEBOX_BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("TUNEBOX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	for _, ext := range c.Library.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.Newf("library extension %q must start with a dot", ext)
		}
	}
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, string(os.PathListSeparator))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
