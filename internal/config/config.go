// Package config loads the optional YAML configuration file. Flags take
// precedence over file values; the file exists so deployments do not have
// to encode everything on the command line.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration.
type Config struct {
	Addr            string `yaml:"addr"`
	Database        string `yaml:"database"`
	JWTSecret       string `yaml:"jwt_secret"`
	DefaultCurrency string `yaml:"default_currency"`
	LogPath         string `yaml:"log_path"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}
