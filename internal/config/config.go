// Package config loads the user configuration from
// ~/.config/revise/config.yaml. Every field has a default; a missing
// file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the user-tunable configuration.
type Config struct {
	// Model names the Anthropic model used for classification,
	// grouping, and narrative generation.
	Model string `yaml:"model"`

	// AutoApproveStaged treats hunks in files already staged for commit
	// as reviewed.
	AutoApproveStaged bool `yaml:"autoApproveStaged"`

	// ContextLines is the diff context passed to git.
	ContextLines int `yaml:"contextLines"`

	// ListenAddr is the local address the review server binds.
	ListenAddr string `yaml:"listenAddr"`

	// APIKey overrides the ANTHROPIC_API_KEY environment variable.
	APIKey string `yaml:"apiKey"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model:        "claude-sonnet-4-5",
		ContextLines: 3,
		ListenAddr:   "127.0.0.1:7373",
	}
}

// Path returns the config file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ".config", "revise", "config.yaml"), nil
}

// Load reads the config file, filling unset fields from defaults.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

// LoadFile reads a specific config file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = Default().Model
	}
	if cfg.ContextLines <= 0 {
		cfg.ContextLines = Default().ContextLines
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = Default().ListenAddr
	}
	return cfg, nil
}

// ResolveAPIKey returns the configured key, falling back to the
// environment.
func (c Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}
