package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Ignore holds base-name glob patterns for files that never enter
	// comparison (system metadata droppings and the like).
	Ignore []string `yaml:"ignore"`

	// Workers bounds the digest worker pool.
	Workers int `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Ignore: []string{
			".DS_Store",
			"Thumbs.db",
			".picasa.ini",
			"Icon\r",
			"desktop.ini",
		},
		Workers: runtime.NumCPU() * 2,
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() * 2
	}
	return cfg, nil
}
