package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file searched for in the working directory and in Dir.
const FileName = "config.yaml"

// Dir returns the per-user meshview config directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "meshview")
}

// Load builds the config from defaults, then the first config file found,
// then command-line flags, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := locate(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// locate returns the --config path, else the first existing candidate, else "".
func locate() string {
	if p := ConfigPath(); p != "" {
		return p
	}
	for _, p := range []string{FileName, filepath.Join(Dir(), FileName)} {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// loadFromFile merges a YAML file over cfg. Unknown keys are an error; an
// empty file changes nothing.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Save writes the config where Load finds it: the --config path if given,
// otherwise FileName in Dir.
func (c *Config) Save() error {
	path := ConfigPath()
	if path == "" {
		path = filepath.Join(Dir(), FileName)
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
