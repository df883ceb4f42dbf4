// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen" toml:"screen"`
	Field     FieldConfig     `yaml:"field" toml:"field"`
	Noise     NoiseConfig     `yaml:"noise" toml:"noise"`
	Particles ParticlesConfig `yaml:"particles" toml:"particles"`
	Color     ColorConfig     `yaml:"color" toml:"color"`
	Frames    FramesConfig    `yaml:"frames" toml:"frames"`
	Run       RunConfig       `yaml:"run" toml:"run"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width" toml:"width"`
	Height    int    `yaml:"height" toml:"height"`
	TargetFPS int    `yaml:"target_fps" toml:"target_fps"`
	Title     string `yaml:"title" toml:"title"`
}

// FieldConfig holds flow field generation parameters.
type FieldConfig struct {
	CellSize   float64 `yaml:"cell_size" toml:"cell_size"`     // Pixels per grid cell
	Margin     float64 `yaml:"margin" toml:"margin"`           // Extra pixels covered beyond the canvas
	NoiseInc   float64 `yaml:"noise_inc" toml:"noise_inc"`     // Noise offset per cell
	TimeStep   float64 `yaml:"time_step" toml:"time_step"`     // Noise z offset per generated row
	AngleScale float64 `yaml:"angle_scale" toml:"angle_scale"` // noise -> angle multiplier
	Magnitude  float64 `yaml:"magnitude" toml:"magnitude"`     // Length of every cell vector
}

// NoiseConfig selects and tunes the coherent noise backend.
type NoiseConfig struct {
	Backend string  `yaml:"backend" toml:"backend"` // perlin, opensimplex or harmonic
	Seed    int64   `yaml:"seed" toml:"seed"`       // 0 = time based
	Octaves int     `yaml:"octaves" toml:"octaves"`
	Falloff float64 `yaml:"falloff" toml:"falloff"`
}

// ParticlesConfig holds particle population and drawing parameters.
type ParticlesConfig struct {
	Count      int     `yaml:"count" toml:"count"`
	Radius     float64 `yaml:"radius" toml:"radius"`
	MaxSpeed   float64 `yaml:"max_speed" toml:"max_speed"`
	PointSize  float64 `yaml:"point_size" toml:"point_size"`
	LineWidth  float64 `yaml:"line_width" toml:"line_width"`
	DrawTrail  bool    `yaml:"draw_trail" toml:"draw_trail"`
	EdgePolicy string  `yaml:"edge_policy" toml:"edge_policy"` // respawn or wrap
}

// ColorConfig holds the rotating palette.
type ColorConfig struct {
	Hue        float64 `yaml:"hue" toml:"hue"`
	HueInc     float64 `yaml:"hue_inc" toml:"hue_inc"` // Degrees per tick
	Saturation float64 `yaml:"saturation" toml:"saturation"`
	Lightness  float64 `yaml:"lightness" toml:"lightness"`
	Alpha      float64 `yaml:"alpha" toml:"alpha"`
	Space      string  `yaml:"space" toml:"space"` // hsl, hsluv or a gradient name
}

// FramesConfig holds trailing frame history settings.
type FramesConfig struct {
	MaxFrames  int    `yaml:"max_frames" toml:"max_frames"`
	Background [3]int `yaml:"background" toml:"background"` // RGB, 0-255
}

// RunConfig holds run length and frame save settings.
type RunConfig struct {
	MaxTicks  int32 `yaml:"max_ticks" toml:"max_ticks"`   // 0 = unlimited
	SaveEvery int32 `yaml:"save_every" toml:"save_every"` // Save a PNG every N ticks (0 = never)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int32 `yaml:"stats_window" toml:"stats_window"` // Ticks per stats window
	PerfCollectorWindow int   `yaml:"perf_collector_window" toml:"perf_collector_window"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML or TOML file (by extension), merging
// with embedded defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Only overwrites fields present in file
	switch {
	case path == "":
	case filepath.Ext(path) == ".toml":
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("parsing config file: unknown keys %v", keys)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first out-of-range setting. Geometry constraints that
// involve several sections (margin vs particle reach) are checked again by the
// simulation when it is configured.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Screen.Width > 0 && c.Screen.Height > 0, "screen: size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	check(c.Field.CellSize > 0, "field.cell_size must be positive, got %v", c.Field.CellSize)
	check(c.Field.Margin >= 0, "field.margin must not be negative, got %v", c.Field.Margin)
	check(c.Field.NoiseInc > 0, "field.noise_inc must be positive, got %v", c.Field.NoiseInc)
	check(c.Field.TimeStep >= 0, "field.time_step must not be negative, got %v", c.Field.TimeStep)
	check(c.Field.Magnitude > 0, "field.magnitude must be positive, got %v", c.Field.Magnitude)
	check(c.Noise.Octaves > 0, "noise.octaves must be positive, got %d", c.Noise.Octaves)
	check(c.Noise.Falloff > 0 && c.Noise.Falloff < 1, "noise.falloff must be in (0, 1), got %v", c.Noise.Falloff)
	check(c.Particles.Count >= 0, "particles.count must not be negative, got %d", c.Particles.Count)
	check(c.Particles.Radius >= 0, "particles.radius must not be negative, got %v", c.Particles.Radius)
	check(c.Particles.MaxSpeed > 0, "particles.max_speed must be positive, got %v", c.Particles.MaxSpeed)
	check(c.Color.Alpha >= 0 && c.Color.Alpha <= 1, "color.alpha must be in [0, 1], got %v", c.Color.Alpha)
	check(c.Frames.MaxFrames > 0, "frames.max_frames must be positive, got %d", c.Frames.MaxFrames)
	for i, v := range c.Frames.Background {
		check(v >= 0 && v <= 255, "frames.background[%d] must be in [0, 255], got %d", i, v)
	}
	check(c.Run.MaxTicks >= 0, "run.max_ticks must not be negative, got %d", c.Run.MaxTicks)
	check(c.Run.SaveEvery >= 0, "run.save_every must not be negative, got %d", c.Run.SaveEvery)
	check(c.Telemetry.StatsWindow >= 0, "telemetry.stats_window must not be negative, got %d", c.Telemetry.StatsWindow)

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
