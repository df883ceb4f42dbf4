// Package telemetry provides run statistics, performance timing and CSV export
// for the flow field simulation.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Particle population at window end
	Particles int `csv:"particles"`

	// Edge events during window
	Respawns int `csv:"respawns"`
	Wraps    int `csv:"wraps"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Flow field state
	FieldHeading float64 `csv:"field_heading"` // Circular mean of cell headings, radians
	FieldTime    float64 `csv:"field_time"`    // Noise z offset
	Hue          float64 `csv:"hue"`

	// Surface accounting
	LiveSurfaces   int `csv:"live_surfaces"`
	PeakSurfaces   int `csv:"peak_surfaces"`
	DoubleReleases int `csv:"double_releases"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats calculates mean, standard deviation and percentiles.
// The standard deviation is the unbiased sample estimate; it is 0 for fewer
// than two values.
func ComputeSpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0], values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// MeanHeading returns the circular mean of angles in radians, in (-π, π].
func MeanHeading(headings []float64) float64 {
	if len(headings) == 0 {
		return 0
	}
	return stat.CircularMean(headings, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("particles", s.Particles),
		slog.Int("respawns", s.Respawns),
		slog.Int("wraps", s.Wraps),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("field_heading", s.FieldHeading),
		slog.Float64("field_time", s.FieldTime),
		slog.Float64("hue", s.Hue),
		slog.Int("live_surfaces", s.LiveSurfaces),
		slog.Int("peak_surfaces", s.PeakSurfaces),
		slog.Int("double_releases", s.DoubleReleases),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"particles", s.Particles,
		"respawns", s.Respawns,
		"wraps", s.Wraps,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"field_heading", s.FieldHeading,
		"field_time", s.FieldTime,
		"hue", s.Hue,
		"live_surfaces", s.LiveSurfaces,
		"peak_surfaces", s.PeakSurfaces,
	)
}
