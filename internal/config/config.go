// Package config loads Mudra's runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds process-level settings. Game parameters here are defaults;
// values saved through the settings API take precedence.
type Config struct {
	Addr          string        `env:"MUDRA_ADDR" envDefault:":8080"`
	DataDir       string        `env:"MUDRA_DATA_DIR"`
	CameraID      int           `env:"MUDRA_CAMERA_ID" envDefault:"0"`
	FPS           int           `env:"MUDRA_FPS" envDefault:"15"`
	Motion        float64       `env:"MUDRA_MOTION_THRESHOLD" envDefault:"0.5"`
	MotionRefresh int           `env:"MUDRA_MOTION_REFRESH" envDefault:"5"`
	MaxRounds     int           `env:"MUDRA_MAX_ROUNDS" envDefault:"3"`
	CountdownFrom int           `env:"MUDRA_COUNTDOWN_FROM" envDefault:"3"`
	Tick          time.Duration `env:"MUDRA_TICK" envDefault:"1s"`
	PPerfect      float64       `env:"MUDRA_P_PERFECT" envDefault:"0.96"`
	Opponent      string        `env:"MUDRA_OPPONENT" envDefault:"counter"`
	PluginDir     string        `env:"MUDRA_PLUGIN_DIR"`
	StaticDir     string        `env:"MUDRA_STATIC_DIR"`
	Tray          bool          `env:"MUDRA_TRAY" envDefault:"false"`
}

// Load parses the environment and fills in directory defaults under the
// user's home directory.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".mudra")
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(cfg.DataDir, "plugins")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("MUDRA_FPS must be positive, got %d", c.FPS)
	case c.MaxRounds <= 0:
		return fmt.Errorf("MUDRA_MAX_ROUNDS must be positive, got %d", c.MaxRounds)
	case c.CountdownFrom <= 0:
		return fmt.Errorf("MUDRA_COUNTDOWN_FROM must be positive, got %d", c.CountdownFrom)
	case c.Tick <= 0:
		return fmt.Errorf("MUDRA_TICK must be positive, got %s", c.Tick)
	case c.PPerfect < 0 || c.PPerfect > 1:
		return fmt.Errorf("MUDRA_P_PERFECT must be within [0,1], got %g", c.PPerfect)
	case c.Motion < 0:
		return fmt.Errorf("MUDRA_MOTION_THRESHOLD must not be negative, got %g", c.Motion)
	case c.Opponent != "counter" && c.Opponent != "uniform":
		return fmt.Errorf("MUDRA_OPPONENT must be counter or uniform, got %q", c.Opponent)
	}
	return nil
}

// DBPath returns the SQLite database location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}
