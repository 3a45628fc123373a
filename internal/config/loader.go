package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Built-in defaults, matching the file names the executors write by default.
const (
	DefaultManifest  = "test_list.yaml"
	DefaultPDF       = "delivery_note.pdf"
	DefaultGoTestCmd = "go test -json ./..."
	DefaultVitestCmd = "npx vitest run --reporter=json"
	DefaultServeAddr = "127.0.0.1:8087"
	DefaultLogLevel  = "info"
)

// Load reads and parses a configuration from the given YAML file path and
// applies defaults to anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// SearchPaths returns the locations LoadDefault looks at, in order.
func SearchPaths() []string {
	candidates := []string{"deliverynote.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".deliverynote", "config.yaml"))
	}
	return candidates
}

// LoadDefault loads the first config found in SearchPaths. With no config
// file present it returns the built-in defaults and an empty path.
func LoadDefault() (*Config, string, error) {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			return cfg, path, err
		}
	}
	return Default(), "", nil
}

func applyDefaults(cfg *Config) {
	if cfg.Manifest == "" {
		cfg.Manifest = DefaultManifest
	}
	if cfg.ResultsDir == "" {
		cfg.ResultsDir = "."
	}
	if cfg.Output.PDF == "" {
		cfg.Output.PDF = DefaultPDF
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.GoTest.Command == "" {
		cfg.GoTest.Command = DefaultGoTestCmd
	}
	if cfg.GoTest.Dir == "" {
		cfg.GoTest.Dir = "."
	}
	if cfg.Vitest.Command == "" {
		cfg.Vitest.Command = DefaultVitestCmd
	}
	if cfg.Vitest.Dir == "" {
		cfg.Vitest.Dir = "."
	}
	if cfg.Axe.Timeout == "" {
		cfg.Axe.Timeout = "30s"
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = DefaultServeAddr
	}
}
