package game

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/pthm-cable/afterglow/config"
	"github.com/pthm-cable/afterglow/systems"
	"github.com/pthm-cable/afterglow/telemetry"
)

// ErrInvalidParams is returned when a configuration cannot run without a
// particle leaving the flow field.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// Params holds everything Configure rebuilds the simulation from.
type Params struct {
	Width, Height int
	ParticleCount int
	CellSize      float64
	Margin        float64
	MaxFrames     int
	NoiseInc      float64
	TimeStep      float64
	AngleScale    float64
	Magnitude     float64

	Noise systems.NoiseSettings

	Radius     float64
	MaxSpeed   float64
	Style      systems.DrawStyle
	EdgePolicy systems.EdgePolicy

	Palette    systems.Palette
	Background color.NRGBA

	MaxTicks int32 // 0 = unlimited
}

// ParamsFromConfig maps the loaded configuration onto simulation parameters.
func ParamsFromConfig(cfg *config.Config) (Params, error) {
	policy, err := systems.ParseEdgePolicy(cfg.Particles.EdgePolicy)
	if err != nil {
		return Params{}, fmt.Errorf("particles.edge_policy: %w", err)
	}
	bg := cfg.Frames.Background

	return Params{
		Width:         cfg.Screen.Width,
		Height:        cfg.Screen.Height,
		ParticleCount: cfg.Particles.Count,
		CellSize:      cfg.Field.CellSize,
		Margin:        cfg.Field.Margin,
		MaxFrames:     cfg.Frames.MaxFrames,
		NoiseInc:      cfg.Field.NoiseInc,
		TimeStep:      cfg.Field.TimeStep,
		AngleScale:    cfg.Field.AngleScale,
		Magnitude:     cfg.Field.Magnitude,
		Noise: systems.NoiseSettings{
			Backend: cfg.Noise.Backend,
			Seed:    cfg.Noise.Seed,
			Octaves: cfg.Noise.Octaves,
			Falloff: cfg.Noise.Falloff,
		},
		Radius:   cfg.Particles.Radius,
		MaxSpeed: cfg.Particles.MaxSpeed,
		Style: systems.DrawStyle{
			PointSize: cfg.Particles.PointSize,
			LineWidth: cfg.Particles.LineWidth,
			DrawTrail: cfg.Particles.DrawTrail,
		},
		EdgePolicy: policy,
		Palette: systems.Palette{
			Hue:        cfg.Color.Hue,
			HueInc:     cfg.Color.HueInc,
			Saturation: cfg.Color.Saturation,
			Lightness:  cfg.Color.Lightness,
			Alpha:      cfg.Color.Alpha,
			Space:      cfg.Color.Space,
		},
		Background: color.NRGBA{R: uint8(bg[0]), G: uint8(bg[1]), B: uint8(bg[2]), A: 255},
		MaxTicks:   cfg.Run.MaxTicks,
	}, nil
}

// Validate checks sizes and that the grid covers every position a particle
// can reach between edge checks: up to radius+maxSpeed beyond the canvas.
func (p Params) Validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: canvas size %dx%d", ErrInvalidParams, p.Width, p.Height)
	case p.ParticleCount < 0:
		return fmt.Errorf("%w: particle count %d", ErrInvalidParams, p.ParticleCount)
	case p.CellSize <= 0:
		return fmt.Errorf("%w: cell size %v", ErrInvalidParams, p.CellSize)
	case p.MaxFrames < 1:
		return fmt.Errorf("%w: max frames %d", ErrInvalidParams, p.MaxFrames)
	case p.NoiseInc <= 0 || p.TimeStep < 0:
		return fmt.Errorf("%w: noise increment %v, time step %v", ErrInvalidParams, p.NoiseInc, p.TimeStep)
	case p.Magnitude <= 0 || p.MaxSpeed <= 0 || p.Radius < 0:
		return fmt.Errorf("%w: magnitude %v, max speed %v, radius %v", ErrInvalidParams, p.Magnitude, p.MaxSpeed, p.Radius)
	}

	reach := p.Radius + p.MaxSpeed
	if p.Margin <= reach {
		return fmt.Errorf("%w: margin %v must exceed radius+max speed %v", ErrInvalidParams, p.Margin, reach)
	}
	if reach > p.CellSize {
		return fmt.Errorf("%w: radius+max speed %v exceeds cell size %v", ErrInvalidParams, reach, p.CellSize)
	}
	cols, rows := systems.GridDims(float64(p.Width), float64(p.Height), p.Margin, p.CellSize)
	if float64(cols)*p.CellSize <= float64(p.Width)+reach || float64(rows)*p.CellSize <= float64(p.Height)+reach {
		return fmt.Errorf("%w: %dx%d grid of %v cells does not cover the canvas plus %v", ErrInvalidParams, cols, rows, p.CellSize, reach)
	}
	if err := p.Palette.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

func (p Params) fieldSettings() systems.FieldSettings {
	return systems.FieldSettings{
		Width:      float64(p.Width),
		Height:     float64(p.Height),
		Margin:     p.Margin,
		CellSize:   p.CellSize,
		NoiseInc:   p.NoiseInc,
		TimeStep:   p.TimeStep,
		AngleScale: p.AngleScale,
		Magnitude:  p.Magnitude,
	}
}

func (p Params) particleSettings() systems.ParticleSettings {
	return systems.ParticleSettings{
		Count:    p.ParticleCount,
		Width:    float64(p.Width),
		Height:   float64(p.Height),
		Radius:   p.Radius,
		MaxSpeed: p.MaxSpeed,
		Policy:   p.EdgePolicy,
		Style:    p.Style,
	}
}

// Options holds run settings that do not affect what is drawn.
type Options struct {
	Seed            int64 // Particle and default noise seed
	LogStats        bool  // Log stats and perf each window
	StatsWindow     int32 // Ticks per stats window (0 = 300)
	PerfWindow      int   // Ticks averaged by the perf collector (0 = 60)
	OutputDir       string
	ExportParticles bool           // Write particles.csv into OutputDir
	Config          *config.Config // Written to OutputDir when set
	StatsCallback   func(telemetry.WindowStats)
}
