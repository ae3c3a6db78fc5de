// Package config loads the optional YAML configuration of a zipsh session.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"zipsh/internal/logging"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Color modes for the prompt.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var logger = logging.GetLogger().WithPrefix("config")

// Config is the session configuration. Every field has a default, so a
// missing config file yields a fully usable value.
type Config struct {
	Hostname string `yaml:"hostname" default:"emulator"`
	LogLevel string `yaml:"log_level" default:"WARN"`
	Color    string `yaml:"color" default:"auto"`
	Farewell string `yaml:"farewell" default:"Exiting the emulator. Goodbye!"`
	Mount    Mount  `yaml:"mount"`
}

// Mount configures `zipsh mount`.
type Mount struct {
	FSName     string `yaml:"fsname" default:"zipsh"`
	AllowOther bool   `yaml:"allow_other"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		// struct tags are static, so this only fires on a programming error
		panic(err)
	}
	return cfg
}

// Load reads the YAML file at path. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	logger.Debug("Loading config from %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data, fills defaults and validates the result.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return Config{}, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q: want %s, %s or %s", c.Color, ColorAuto, ColorAlways, ColorNever)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Hostname == "" {
		return errors.New("hostname must not be empty")
	}
	return nil
}

// Level returns the parsed log level. Validate must have passed.
func (c Config) Level() logging.LogLevel {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}
