package telemetry

// Collector accumulates edge events within tick windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	respawns int
	wraps    int
}

// NewCollector creates a new stats collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowDurationTicks: windowTicks}
}

// RecordRespawns records particles replaced after leaving the canvas.
func (c *Collector) RecordRespawns(n int) {
	c.respawns += n
}

// RecordWraps records particles moved to the opposite edge.
func (c *Collector) RecordWraps(n int) {
	c.wraps += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// SurfaceCounts reports surface allocation state at flush time.
type SurfaceCounts struct {
	Live           int
	Peak           int
	DoubleReleases int
}

// Sample is the simulation state sampled at the end of a window.
type Sample struct {
	Speeds    []float64 // One per particle
	Headings  []float64 // One per flow field cell
	FieldTime float64
	Hue       float64
	Surfaces  SurfaceCounts
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	mean, std, p10, p50, p90 := ComputeSpeedStats(s.Speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Particles: len(s.Speeds),
		Respawns:  c.respawns,
		Wraps:     c.wraps,

		SpeedMean: mean,
		SpeedStd:  std,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		FieldHeading: MeanHeading(s.Headings),
		FieldTime:    s.FieldTime,
		Hue:          s.Hue,

		LiveSurfaces:   s.Surfaces.Live,
		PeakSurfaces:   s.Surfaces.Peak,
		DoubleReleases: s.Surfaces.DoubleReleases,
	}

	c.windowStartTick = currentTick
	c.respawns = 0
	c.wraps = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
