// Package config loads artcreator settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/ironsheep/artcreator/internal/logging"
	"github.com/ironsheep/artcreator/internal/template"
	"github.com/ironsheep/artcreator/internal/workflow"
)

// EnvPrefix prefixes every environment override, for example
// ARTCREATOR_LOG_LEVEL or ARTCREATOR_TEMPLATE_MATERIAL.
const EnvPrefix = "ARTCREATOR_"

// Config is the complete application configuration.
type Config struct {
	Log      logging.Options `toml:"log" envPrefix:"LOG_"`
	Session  Session         `toml:"session" envPrefix:"SESSION_"`
	Template template.Config `toml:"template" envPrefix:"TEMPLATE_"`
}

// Session holds per-session settings.
type Session struct {
	HistoryCapacity int `toml:"history_capacity" env:"HISTORY_CAPACITY"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:      logging.DefaultOptions(),
		Session:  Session{HistoryCapacity: workflow.DefaultHistoryCapacity},
		Template: template.DefaultConfig(),
	}
}

// Load starts from Default, decodes the TOML file at path over it, applies
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	opts := env.Options{
		Prefix:      EnvPrefix,
		Environment: env.ToMap(environ),
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Template = cfg.Template.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Session.HistoryCapacity < 1 {
		return fmt.Errorf("session: history_capacity must be at least 1, got %d", c.Session.HistoryCapacity)
	}
	if err := c.Template.Validate(); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
