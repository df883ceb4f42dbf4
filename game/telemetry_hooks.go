package game

import (
	"log/slog"

	"github.com/pthm-cable/afterglow/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and writes it out.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.frame) {
		return
	}

	stats := s.collector.Flush(s.frame, s.sample())
	perfStats := s.perfCollector.Stats()

	if s.opts.StatsCallback != nil {
		s.opts.StatsCallback(stats)
	}

	if s.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// sample collects the end-of-window state for the collector.
func (s *Simulation) sample() telemetry.Sample {
	smp := telemetry.Sample{
		Speeds:    s.particles.Speeds(),
		FieldTime: s.field.Time(),
		Hue:       s.palette.Hue,
		Surfaces: telemetry.SurfaceCounts{
			Live:           s.canvas.Live(),
			Peak:           s.canvas.Peak(),
			DoubleReleases: int(s.canvas.DoubleReleases()),
		},
	}
	if s.grid != nil {
		smp.Headings = s.grid.Headings()
	}
	return smp
}
