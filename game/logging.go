package game

import (
	"log/slog"
	"time"
)

// LogValue implements slog.LogValuer for structured logging.
func (p Params) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("width", p.Width),
		slog.Int("height", p.Height),
		slog.Int("particles", p.ParticleCount),
		slog.Float64("cell_size", p.CellSize),
		slog.Float64("margin", p.Margin),
		slog.Int("max_frames", p.MaxFrames),
		slog.Float64("noise_inc", p.NoiseInc),
		slog.Float64("time_step", p.TimeStep),
		slog.Float64("angle_scale", p.AngleScale),
		slog.String("noise", p.Noise.Backend),
		slog.String("edge_policy", p.EdgePolicy.String()),
		slog.Int("max_ticks", int(p.MaxTicks)),
	)
}

// logSummary logs surface accounting and throughput at shutdown.
func (s *Simulation) logSummary() {
	perf := s.perfCollector.Stats()
	slog.Info("simulation finished",
		"frames", s.frame,
		"surfaces_allocated", s.canvas.Allocated(),
		"surfaces_released", s.canvas.Released(),
		"surfaces_peak", s.canvas.Peak(),
		"double_releases", s.canvas.DoubleReleases(),
		"avg_tick", perf.AvgTickDuration.Round(time.Microsecond),
	)
}
