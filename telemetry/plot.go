package telemetry

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// PlotColumns lists the WindowStats columns History.Plot can chart.
var PlotColumns = []string{"speed_mean", "respawns", "wraps", "field_heading", "live_surfaces"}

// History keeps every window seen during a run for end-of-run charts.
type History struct {
	windows []WindowStats
}

// Add appends one window. It matches the game.Options.StatsCallback signature.
func (h *History) Add(s WindowStats) {
	h.windows = append(h.windows, s)
}

// Len returns the number of recorded windows.
func (h *History) Len() int {
	return len(h.windows)
}

// Series returns one value per recorded window for the named column.
func (h *History) Series(column string) ([]float64, error) {
	pick, err := columnFunc(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(h.windows))
	for i, w := range h.windows {
		out[i] = pick(w)
	}
	return out, nil
}

// Plot renders the named column as an ASCII line chart. It returns an empty
// string when nothing was recorded.
func (h *History) Plot(column string, height, width int) (string, error) {
	series, err := h.Series(column)
	if err != nil {
		return "", err
	}
	if len(series) == 0 {
		return "", nil
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(column),
	), nil
}

func columnFunc(column string) (func(WindowStats) float64, error) {
	switch column {
	case "speed_mean":
		return func(s WindowStats) float64 { return s.SpeedMean }, nil
	case "respawns":
		return func(s WindowStats) float64 { return float64(s.Respawns) }, nil
	case "wraps":
		return func(s WindowStats) float64 { return float64(s.Wraps) }, nil
	case "field_heading":
		return func(s WindowStats) float64 { return s.FieldHeading }, nil
	case "live_surfaces":
		return func(s WindowStats) float64 { return float64(s.LiveSurfaces) }, nil
	}
	return nil, fmt.Errorf("unknown plot column %q", column)
}
