// Package config loads the optional YAML file that overrides the built-in
// game rules and outer surface defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"marblering/circring"
	"marblering/constants"
)

// ErrInvalid reports a config value outside its allowed range.
var ErrInvalid = errors.New("config: invalid value")

// Config mirrors the YAML file layout.
type Config struct {
	Ring    Ring    `yaml:"ring"`
	Game    Game    `yaml:"game"`
	Store   Store   `yaml:"store"`
	Metrics Metrics `yaml:"metrics"`
}

// Ring holds the engine policy.
type Ring struct {
	InsertSkip int    `yaml:"insert_skip"`
	RemoveWalk int    `yaml:"remove_walk"`
	Magic      uint64 `yaml:"magic"`
}

// Game holds driver settings.
type Game struct {
	Multiplier uint64 `yaml:"multiplier"`
}

// Store locates the run history database. An empty path disables it.
type Store struct {
	Path string `yaml:"path"`
}

// Metrics configures the Prometheus endpoint. An empty address disables it.
type Metrics struct {
	Addr string `yaml:"addr"`
}

// Default returns the published rules with storage and metrics off.
func Default() Config {
	return Config{
		Ring: Ring{
			InsertSkip: constants.DefaultInsertSkip,
			RemoveWalk: constants.DefaultRemoveWalk,
			Magic:      constants.DefaultMagic,
		},
		Game:    Game{Multiplier: constants.DefaultMultiplier},
		Metrics: Metrics{Addr: constants.DefaultMetricsAddr},
	}
}

// Load reads path over Default. An empty path returns Default unchanged.
// Keys missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the engine or driver cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Ring.InsertSkip < 1:
		return fmt.Errorf("%w: ring.insert_skip %d < 1", ErrInvalid, c.Ring.InsertSkip)
	case c.Ring.RemoveWalk < 0:
		return fmt.Errorf("%w: ring.remove_walk %d < 0", ErrInvalid, c.Ring.RemoveWalk)
	case c.Ring.Magic < 1:
		return fmt.Errorf("%w: ring.magic must be positive", ErrInvalid)
	case c.Game.Multiplier < 1:
		return fmt.Errorf("%w: game.multiplier must be positive", ErrInvalid)
	}
	return nil
}

// RingConfig builds the engine policy.
func (c Config) RingConfig() circring.Config {
	return circring.Config{
		InsertSkip: c.Ring.InsertSkip,
		RemoveWalk: c.Ring.RemoveWalk,
		IsRemove:   circring.MultipleOf(c.Ring.Magic),
	}
}
