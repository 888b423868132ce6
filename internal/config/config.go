package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrNoSpawnBinary = errors.New("no binary to spawn jobs with")

type Config struct {
	// SpawnBinary is the executable re-invoked as the child of every job. It
	// defaults to the running shell itself.
	SpawnBinary string `yaml:"spawn_binary"`
	DevNull     string `yaml:"dev_null"`
	LogFile     string `yaml:"log_file"`
	LogLevel    string `yaml:"log_level"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

func Load(file string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", file, err)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}

	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	if c.SpawnBinary == "" {
		if bin, err := os.Executable(); err == nil {
			c.SpawnBinary = bin
		}
	}
	if c.DevNull == "" {
		c.DevNull = os.DevNull
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
