// Package game drives the flow field simulation: it owns every piece of
// simulation state and runs one tick at a time.
package game

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/afterglow/systems"
	"github.com/pthm-cable/afterglow/telemetry"
)

// ErrClosed is returned by Tick and Configure after Close.
var ErrClosed = errors.New("simulation closed")

// Presenter receives each composited frame before it is released.
// The surface is only valid for the duration of the call.
type Presenter interface {
	Present(frame int32, s systems.Surface) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(frame int32, s systems.Surface) error

// Present calls f.
func (f PresenterFunc) Present(frame int32, s systems.Surface) error {
	return f(frame, s)
}

// Simulation holds the complete simulation state.
type Simulation struct {
	params Params
	opts   Options

	canvas *systems.TrackedCanvas
	rng    *rand.Rand

	field     *systems.FlowFieldGenerator
	grid      *systems.Grid
	particles *systems.ParticleSystem
	frames    *systems.FrameRing
	current   systems.Surface
	palette   systems.Palette

	frame  int32
	closed bool

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	exporter      *telemetry.FrameExporter
}

// New creates a simulation drawing through canvas.
func New(params Params, canvas systems.Canvas, opts Options) (*Simulation, error) {
	statsWindow := opts.StatsWindow
	if statsWindow <= 0 {
		statsWindow = 300
	}

	s := &Simulation{
		opts:          opts,
		canvas:        systems.NewTrackedCanvas(canvas),
		rng:           rand.New(rand.NewSource(opts.Seed)),
		collector:     telemetry.NewCollector(statsWindow),
		perfCollector: telemetry.NewPerfCollector(opts.PerfWindow),
	}

	if err := s.Configure(params); err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir, opts.ExportParticles)
	if err != nil {
		s.release()
		return nil, err
	}
	s.outputManager = om
	s.exporter = om.Particles()
	if opts.Config != nil {
		if err := om.WriteConfig(opts.Config); err != nil {
			s.Close()
			return nil, fmt.Errorf("writing config snapshot: %w", err)
		}
	}

	slog.Info("simulation configured", "params", s.params, "seed", opts.Seed, "output_dir", om.Dir())
	return s, nil
}

// Configure validates p and rebuilds the field, particles and frame history.
// The frame counter and telemetry carry over. On error nothing changes.
func (s *Simulation) Configure(p Params) error {
	if s.closed {
		return ErrClosed
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if w, h := s.canvas.Size(); w != p.Width || h != p.Height {
		return fmt.Errorf("%w: canvas is %dx%d, parameters ask for %dx%d", ErrInvalidParams, w, h, p.Width, p.Height)
	}

	noise, err := systems.NewNoise(p.Noise.ResolveSeed(s.opts.Seed))
	if err != nil {
		return fmt.Errorf("configuring noise: %w", err)
	}

	// Free the old history before allocating the new one so the live
	// surface count never exceeds the new maxFrames+1.
	s.release()

	frames, err := systems.NewFrameRing(s.canvas, p.MaxFrames)
	if err != nil {
		return fmt.Errorf("configuring frame ring: %w", err)
	}

	s.params = p
	s.field = systems.NewFlowFieldGenerator(noise, p.fieldSettings())
	s.grid = nil
	s.particles = systems.NewParticleSystem(p.particleSettings(), s.rng)
	s.frames = frames
	s.current = s.newFrame()
	s.palette = p.Palette
	return nil
}

// newFrame allocates a blank surface to draw the next tick into.
func (s *Simulation) newFrame() systems.Surface {
	f := s.canvas.NewSurface()
	f.Clear(color.NRGBA{})
	return f
}

// release frees the frame history and the current frame.
func (s *Simulation) release() {
	if s.frames != nil {
		s.frames.Close()
		s.frames = nil
	}
	if s.current != nil {
		s.canvas.Release(s.current)
		s.current = nil
	}
}

// Done reports whether the configured tick limit has been reached.
func (s *Simulation) Done() bool {
	return s.params.MaxTicks > 0 && s.frame >= s.params.MaxTicks
}

// Close releases every surface and flushes output. It is safe to call twice.
func (s *Simulation) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.release()

	if live := s.canvas.Live(); live != 0 {
		slog.Error("surfaces leaked", "live", live)
	}
	s.logSummary()

	if err := s.outputManager.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}

// Frame returns the number of completed ticks.
func (s *Simulation) Frame() int32 {
	return s.frame
}

// Params returns the active parameters.
func (s *Simulation) Params() Params {
	return s.params
}

// Particles returns the particle system.
func (s *Simulation) Particles() *systems.ParticleSystem {
	return s.particles
}

// Grid returns the flow field generated by the last tick, or nil before the first.
func (s *Simulation) Grid() *systems.Grid {
	return s.grid
}

// Frames returns the trailing frame history.
func (s *Simulation) Frames() *systems.FrameRing {
	return s.frames
}

// Canvas returns the tracked canvas all surfaces come from.
func (s *Simulation) Canvas() *systems.TrackedCanvas {
	return s.canvas
}

// Palette returns the current particle palette.
func (s *Simulation) Palette() systems.Palette {
	return s.palette
}

// Perf returns the performance collector.
func (s *Simulation) Perf() *telemetry.PerfCollector {
	return s.perfCollector
}
