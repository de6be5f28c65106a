package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/TFMV/techgraph/physics"
)

// Config holds techgraph configuration.
type Config struct {
	Layout  physics.LayoutConfig `toml:"layout"`
	Rope    physics.RopeConfig   `toml:"rope"`
	Session SessionConfig        `toml:"session"`
	Server  ServerConfig         `toml:"server"`
	Debug   bool                 `toml:"debug"`
}

// SessionConfig controls the play session around the engine.
type SessionConfig struct {
	Tree            string   `toml:"tree"` // path to the node table, empty for the built-in sample
	StartBalance    float64  `toml:"start_balance"`
	BaseClick       float64  `toml:"base_click"`
	Unlocked        []string `toml:"unlocked"`
	MaxFrameDelta   Duration `toml:"max_frame_delta"`
	FramesPerSecond int      `toml:"frames_per_second"`
}

// ServerConfig controls the HTTP presentation server.
type ServerConfig struct {
	Port int `toml:"port"`
}

// Duration is a time.Duration that decodes from strings like "100ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: physics.DefaultLayoutConfig(),
		Rope:   physics.DefaultRopeConfig(),
		Session: SessionConfig{
			StartBalance:    0,
			BaseClick:       1,
			MaxFrameDelta:   Duration{100 * time.Millisecond},
			FramesPerSecond: 60,
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads the config file at path on top of the defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks values the engine cannot run with.
func (c *Config) Validate() error {
	if err := c.Rope.Validate(); err != nil {
		return err
	}
	if c.Layout.Width <= 0 || c.Layout.Height <= 0 {
		return fmt.Errorf("layout area must be positive, got %vx%v", c.Layout.Width, c.Layout.Height)
	}
	if c.Layout.Iterations < 0 {
		return fmt.Errorf("layout iterations must be non-negative, got %d", c.Layout.Iterations)
	}
	if c.Layout.Cooling <= 0 || c.Layout.Cooling >= 1 {
		return fmt.Errorf("layout cooling must be within (0,1), got %v", c.Layout.Cooling)
	}
	if c.Session.StartBalance < 0 {
		return fmt.Errorf("start balance must be non-negative, got %v", c.Session.StartBalance)
	}
	if c.Session.FramesPerSecond <= 0 {
		return fmt.Errorf("frames per second must be positive, got %d", c.Session.FramesPerSecond)
	}
	return nil
}
