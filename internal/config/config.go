// Package config loads kibi's settings file: the handful of options the
// CLI and REPL share (which files to preload, whether to echo reduce
// locations) that are more convenient to keep in a checked-in YAML file
// than to repeat as flags on every invocation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shape of a kibi.yaml settings file.
type Config struct {
	// Prelude lists source files elaborated, in order, before the file
	// named on the command line or before a REPL session starts —
	// shared axioms/defs a project wants available everywhere.
	Prelude []string `yaml:"prelude"`

	// Verbose echoes a `reduce` item's source location alongside its
	// normal form, both in the REPL and in `kibi run`'s output.
	Verbose bool `yaml:"verbose"`

	// JSONDiagnostics is read from the file but not consulted: the CLI
	// and REPL always print diagnostics as plain text.
	JSONDiagnostics bool `yaml:"json_diagnostics"`
}

// Default returns the configuration used when no kibi.yaml is found.
func Default() *Config {
	return &Config{}
}

// Load reads and parses a kibi.yaml file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists, or returns Default() silently if
// it doesn't — a missing kibi.yaml is normal, not an error condition.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
