package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/rs/zerolog"
	"github.com/viant/structload/encoding/json"
)

// Config represents loader settings read from environment, command line flags take precedence
type Config struct {
	LogLevel   string `env:"STRUCTLOAD_LOG_LEVEL,default=info"`
	Strict     bool   `env:"STRUCTLOAD_STRICT,default=false"`
	MaxDepth   int    `env:"STRUCTLOAD_MAX_DEPTH,default=0"`
	TimeLayout string `env:"STRUCTLOAD_TIME_LAYOUT"`
}

// Load decodes config from environment variables
func Load() (*Config, error) {
	ret := &Config{}
	if err := envdecode.Decode(ret); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if ret.MaxDepth < 0 {
		return nil, fmt.Errorf("invalid STRUCTLOAD_MAX_DEPTH: %v", ret.MaxDepth)
	}
	if ret.TimeLayout == "" {
		ret.TimeLayout = time.RFC3339
	}
	return ret, nil
}

// Level returns log level, unknown levels fall back to info
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}

// Options returns load options
func (c *Config) Options() []json.Option {
	ret := []json.Option{json.WithTimeLayout(c.TimeLayout), json.WithMaxDepth(c.MaxDepth)}
	if c.Strict {
		ret = append(ret, json.WithMode(json.ModeStrict))
	}
	return ret
}
