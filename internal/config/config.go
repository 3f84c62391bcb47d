// Package config reads comet2's optional debugger preferences file, .comet2rc.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the preferences file basename, looked for in the directory passed to Load and, if
// not found there, in the user's home directory.
const FileName = ".comet2rc.toml"

// Config holds comet2's debugger preferences. Every field has a zero-value default that matches
// comet2's own hardcoded behavior, so a missing or partially-filled file changes only what it
// sets. comet2 acts on Dump.BytesPerRow only; Startup.Quiet and Breakpoints.Persist are parsed
// but nothing reads them.
type Config struct {
	Startup struct {
		Quiet bool `toml:"quiet"`
	} `toml:"startup"`

	Dump struct {
		BytesPerRow int `toml:"bytes_per_row"`
	} `toml:"dump"`

	Breakpoints struct {
		Persist bool `toml:"persist"`
	} `toml:"breakpoints"`
}

// Default returns the preferences comet2 uses when no file is found. BytesPerRow is left at 0,
// meaning "unset": callers fall back to a terminal-width-derived value, then
// format.DefaultDumpWidth.
func Default() *Config {
	return &Config{}
}

// Load searches dir, then the user's home directory, for .comet2rc.toml, returning the default
// configuration if neither has one. A malformed file is an error; a missing one is not.
func Load(dir string) (*Config, error) {
	for _, candidate := range searchPath(dir) {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}

		return LoadFrom(candidate)
	}

	return Default(), nil
}

// LoadFrom reads and parses the preferences file at path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

func searchPath(dir string) []string {
	var paths []string

	if dir != "" {
		paths = append(paths, filepath.Join(dir, FileName))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, FileName))
	}

	return paths
}
