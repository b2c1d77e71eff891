package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	World    WorldConfig    `toml:"world"`
	Tool     ToolConfig     `toml:"tool"`
	Emitter  EmitterConfig  `toml:"emitter"`
	Bridge   BridgeConfig   `toml:"bridge"`
	Logging  LoggingConfig  `toml:"logging"`
	Prefabs  PrefabsConfig  `toml:"prefabs"`
}

type ViewportConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type WorldConfig struct {
	Grid         float64 `toml:"grid"`          // snapping unit and bridge spacing, pixels
	Snap         bool    `toml:"snap"`          // grid snapping on at start
	Substeps     int     `toml:"substeps"`      // engine steps per tick
	TickRate     int     `toml:"tick_rate"`     // ticks per second
	Iterations   uint    `toml:"iterations"`    // solver iterations
	BoundsFactor float64 `toml:"bounds_factor"` // janitor bounds in viewports
	MaxBodies    int     `toml:"max_bodies"`    // 0 = unlimited
	Seed         int64   `toml:"seed"`
	Mode         string  `toml:"mode"` // "gravity", "setup" or "no_gravity"
}

type ToolConfig struct {
	ThrowFactor    float64 `toml:"throw_factor"`
	MinDrag        float64 `toml:"min_drag"`
	PickRadius     float64 `toml:"pick_radius"`
	DragStyle      string  `toml:"drag_style"` // "direct" or "spring"
	GrabForce      float64 `toml:"grab_force"`
	MotorRate      float64 `toml:"motor_rate"` // radians per second
	SlideMin       float64 `toml:"slide_min"`
	SlideMaxFactor float64 `toml:"slide_max_factor"` // max travel as a multiple of the anchor distance
}

type EmitterConfig struct {
	Interval   int    `toml:"interval"` // ticks between emissions
	Recoil     bool   `toml:"recoil"`
	TargetKind string `toml:"target_kind"`
}

type BridgeConfig struct {
	Margin float64 `toml:"margin"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type PrefabsConfig struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

// Load reads a toml file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:  1280,
			Height: 720,
		},
		World: WorldConfig{
			Grid:         32,
			Snap:         false,
			Substeps:     2,
			TickRate:     80,
			Iterations:   20,
			BoundsFactor: 9.5,
			Seed:         1,
			Mode:         "gravity",
		},
		Tool: ToolConfig{
			ThrowFactor:    4,
			MinDrag:        4,
			PickRadius:     2,
			DragStyle:      "direct",
			GrabForce:      50000,
			MotorRate:      4,
			SlideMin:       0,
			SlideMaxFactor: 1.5,
		},
		Emitter: EmitterConfig{
			Interval:   60,
			TargetKind: "circle",
		},
		Bridge: BridgeConfig{
			Margin: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects values the sandbox cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return fmt.Errorf("viewport %vx%v must be positive", c.Viewport.Width, c.Viewport.Height)
	case c.World.Grid <= 0:
		return fmt.Errorf("world.grid %v must be positive", c.World.Grid)
	case c.World.Substeps < 1 || c.World.Substeps > 3:
		return fmt.Errorf("world.substeps %d out of range 1..3", c.World.Substeps)
	case c.World.TickRate <= 0:
		return fmt.Errorf("world.tick_rate %d must be positive", c.World.TickRate)
	case c.World.BoundsFactor < 1:
		return fmt.Errorf("world.bounds_factor %v must be at least 1", c.World.BoundsFactor)
	case c.World.MaxBodies < 0:
		return fmt.Errorf("world.max_bodies %d must not be negative", c.World.MaxBodies)
	case c.Tool.MinDrag < 0 || c.Tool.PickRadius < 0:
		return fmt.Errorf("tool thresholds must not be negative")
	case c.Tool.SlideMaxFactor <= 0 || c.Tool.SlideMin < 0:
		return fmt.Errorf("tool slide limits must be positive")
	case c.Emitter.Interval <= 0:
		return fmt.Errorf("emitter.interval %d must be positive", c.Emitter.Interval)
	case c.Bridge.Margin < 0:
		return fmt.Errorf("bridge.margin %v must not be negative", c.Bridge.Margin)
	}
	switch strings.ToLower(c.Tool.DragStyle) {
	case "direct", "spring":
	default:
		return fmt.Errorf("tool.drag_style %q must be direct or spring", c.Tool.DragStyle)
	}
	switch strings.ToLower(c.World.Mode) {
	case "gravity", "setup", "no_gravity":
	default:
		return fmt.Errorf("world.mode %q unknown", c.World.Mode)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", c.Logging.Format)
	}
	return nil
}

// TickSeconds is the simulated duration of one tick.
func (c *Config) TickSeconds() float64 {
	return 1 / float64(c.World.TickRate)
}
