// Package config reads and writes the catalog configuration file,
// ~/.goes/config.yml by default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/storage"
)

const (
	CONFIG_FOLDER = ".goes"
	CONFIG_FILE   = "config.yml"

	DefaultProtocol    = storage.GCS
	DefaultConcurrency = 20
	DefaultLogLevel    = "info"
)

type Config struct {
	BaseDir     string `yaml:"base_dir,omitempty"`
	Protocol    string `yaml:"protocol,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Protocol:    string(DefaultProtocol),
		Concurrency: DefaultConcurrency,
		LogLevel:    DefaultLogLevel,
	}
}

// DefaultPath returns ~/.goes/config.yml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot get home directory: %w", err)
	}
	return filepath.Join(home, CONFIG_FOLDER, CONFIG_FILE), nil
}

// Load reads the file at path. A missing file yields Default(). Empty
// fields take their default value and a leading ~/ in base_dir is
// expanded.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	if cfg.Protocol == "" {
		cfg.Protocol = string(DefaultProtocol)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.BaseDir, err = expand(cfg.BaseDir); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := storage.ParseProtocol(c.Protocol); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return errdefs.Invalid("concurrency", fmt.Sprint(c.Concurrency), "must be positive")
	}
	return nil
}

// Write stores cfg at path, creating the folder if needed.
func Write(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	folder := filepath.Dir(path)
	info, err := os.Stat(folder)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(folder, 0700); err != nil {
			return fmt.Errorf("cannot create %s directory: %w", folder, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access %s directory: %w", folder, err)
	} else if !info.IsDir() {
		return fmt.Errorf("path %s not a directory", folder)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("yaml.Marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// ResolveBaseDir returns override when set, else the configured base directory.
func (c Config) ResolveBaseDir(override string) (string, error) {
	dir := override
	if dir == "" {
		dir = c.BaseDir
	}
	if dir == "" {
		return "", errdefs.Invalid("base_dir", "", "not set: pass --base-dir or run 'goes config --base-dir <dir>'")
	}
	return expand(dir)
}

func expand(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
