// Package cliconfig loads codemotion.toml, the project-level config file
// the CLI consults the way surge.toml configures the surge toolchain.
package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const manifestName = "codemotion.toml"

// Config is the decoded form of codemotion.toml.
type Config struct {
	Pass  PassConfig  `toml:"pass"`
	Trace TraceConfig `toml:"trace"`
}

// PassConfig mirrors arcmotion.Options.
type PassConfig struct {
	HoistReleases          bool `toml:"hoist_releases"`
	DisableSILRRCodeMotion bool `toml:"disable_rc_code_motion"`
}

// TraceConfig is the decoded [trace] table. Tracing setup reads only the
// --trace* flags and does not consult it.
type TraceConfig struct {
	Level     string `toml:"level"`
	Mode      string `toml:"mode"`
	Output    string `toml:"output"`
	RingSize  int    `toml:"ring_size"`
	Heartbeat string `toml:"heartbeat"`
}

// Find walks up from startDir looking for codemotion.toml, the same
// upward-search findSurgeToml uses.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes the TOML file at path into a Config.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads explicitPath if given, else searches upward from
// startDir; a missing file (when not explicitly named) is not an error.
func LoadOrDefault(explicitPath, startDir string) (Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}
	path, found, err := Find(startDir)
	if err != nil || !found {
		return Config{}, err
	}
	return Load(path)
}
