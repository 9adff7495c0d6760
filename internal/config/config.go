// Package config loads the cadence demo player configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// InitialVolume is the starting volume, 0.0 to 1.0.
	InitialVolume float64 `koanf:"initial_volume"`

	// InitialSpeed is the starting playback rate (1.0 = normal).
	InitialSpeed float64 `koanf:"initial_speed"`

	// LoopMode is "off", "one" or "all".
	LoopMode string `koanf:"loop_mode"`

	// Shuffle enables shuffled auto-advance.
	Shuffle bool `koanf:"shuffle"`

	// Mpris exposes the session on D-Bus (linux only).
	Mpris bool `koanf:"mpris"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		InitialVolume: 1.0,
		InitialSpeed:  1.0,
		LoopMode:      "off",
		Mpris:         true,
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.InitialVolume < 0 || cfg.InitialVolume > 1 {
		cfg.InitialVolume = 1.0
	}
	if cfg.InitialSpeed <= 0 {
		cfg.InitialSpeed = 1.0
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{
		// 1. $XDG_CONFIG_HOME/cadence/config.toml
		filepath.Join(xdg.ConfigHome, "cadence", "config.toml"),
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}
