package config

import (
	"errors"
	"os"
	"path/filepath"
)

// Location of the configuration file relative to a project directory.
const (
	ConfigDir  = ".doctest"
	ConfigFile = "config.yaml"
)

// ErrConfigNotFound is returned by FindConfig when no directory up to the
// filesystem root holds a configuration file.
var ErrConfigNotFound = errors.New("no .doctest/config.yaml found")

// FindConfig returns the path of the nearest .doctest/config.yaml, looking
// in start and then in each parent directory.
func FindConfig(start string) (string, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(current, ConfigDir, ConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrConfigNotFound
		}
		current = parent
	}
}

// Discover loads the nearest configuration file above start, or the
// defaults when there is none.
func Discover(start string) (*Config, string, error) {
	path, err := FindConfig(start)
	if errors.Is(err, ErrConfigNotFound) {
		return DefaultConfig(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := LoadConfig(path)
	return cfg, path, err
}
