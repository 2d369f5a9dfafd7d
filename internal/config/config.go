package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"sectool/internal/mask"
	"sectool/internal/provider"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for sectool
type Config struct {
	Store struct {
		Location string `yaml:"location"` // Default credential store file
		Cipher   string `yaml:"cipher"`   // Cipher for newly created stores
	} `yaml:"store"`
	Mask struct {
		Iterations int `yaml:"iterations"`
	} `yaml:"mask"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the built-in configuration.
func Default(homeDir string) *Config {
	cfg := &Config{}
	cfg.Store.Location = filepath.Join(homeDir, ".sectool", "credentials.store")
	cfg.Store.Cipher = provider.AES256GCM
	cfg.Mask.Iterations = mask.DefaultIterations
	cfg.Log.Level = "warn"
	return cfg
}

// Load loads configuration from defaults, the optional config file and
// environment variables, in increasing priority. When the file cannot be
// used the returned Config still holds the defaults with the environment
// applied, next to the error.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		cfg := Default("")
		cfg.applyEnv()
		return cfg, err
	}

	cfg := Default(homeDir)

	path := os.Getenv("SECTOOL_CONFIG")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(homeDir, ".config", "sectool", "config.yaml")
	}
	if err := cfg.loadFile(path); err != nil {
		// A missing default file is fine, a missing explicit one is not
		if explicit || !errors.Is(err, os.ErrNotExist) {
			cfg = Default(homeDir)
			cfg.applyEnv()
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (cfg *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return yaml.Unmarshal(data, cfg)
}

// Override with environment variables if set
func (cfg *Config) applyEnv() {
	if location := os.Getenv("SECTOOL_STORE"); location != "" {
		cfg.Store.Location = location
	}

	if cipherName := os.Getenv("SECTOOL_CIPHER"); cipherName != "" {
		cfg.Store.Cipher = cipherName
	}

	if iterStr := os.Getenv("SECTOOL_MASK_ITERATIONS"); iterStr != "" {
		if iterations, err := strconv.Atoi(iterStr); err == nil && iterations > 0 {
			cfg.Mask.Iterations = iterations
		}
	}

	if level := os.Getenv("SECTOOL_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}
