// Package config persists editor settings across runs (§6: "Persisted
// state layout").
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gan74/yave/internal/debugflag"
)

const errPrefix = "config: "

func newErr(reason string) error { return errors.New(errPrefix + reason) }

// ErrNotFound is returned by Load when the settings file does not
// exist yet; the caller should fall back to Default().
var ErrNotFound = newErr("settings file not found")

const dflCollectInterval = 250 // milliseconds

// Settings is the editor's persisted configuration, written to and
// read from settings.yaml under the yave root directory.
type Settings struct {
	// Validation enables GPU instance validation layers.
	//
	// Default is true in a debug build, false otherwise (§6,
	// YAVE_VALIDATION).
	Validation bool `yaml:"validation"`

	// RayTracing enables ray-tracing device features when the
	// selected device advertises support for them.
	//
	// Default is false (§6, YAVE_RT).
	RayTracing bool `yaml:"ray_tracing"`

	// Diagnostics enables the diagnostic checkpoint extension.
	//
	// Default is false (§6, YAVE_DIAG).
	Diagnostics bool `yaml:"diagnostics"`

	// LifetimeCollectIntervalMS is how often, in milliseconds, the
	// lifetime arena's background collector sweeps for signalled
	// destructions.
	//
	// Default is 250.
	LifetimeCollectIntervalMS int `yaml:"lifetime_collect_interval_ms"`

	// LastScene is the path of the most recently opened scene file,
	// exactly as it was given on the command line.
	//
	// Default is "".
	LastScene string `yaml:"last_scene"`
}

// Default returns the editor's default Settings.
func Default() Settings {
	return Settings{
		Validation:                debugflag.Debug,
		RayTracing:                false,
		Diagnostics:               false,
		LifetimeCollectIntervalMS: dflCollectInterval,
		LastScene:                 "",
	}
}

// Load reads settings.yaml from path. If the file does not exist,
// Load returns ErrNotFound alongside Default() so the caller can
// choose to write it back out.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), ErrNotFound
	}
	if err != nil {
		return Default(), err
	}
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), err
	}
	return s, nil
}

// Save writes s to path as YAML, creating the file if needed.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
