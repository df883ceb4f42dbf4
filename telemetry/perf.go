package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase identifies one stage of a simulation tick.
type Phase int

// Tick phases in the order Simulation.Tick runs them.
const (
	PhaseFlowField Phase = iota
	PhaseParticles
	PhaseFrameBuffer
	PhaseComposite
	PhasePresent
	PhaseExport
	numPhases
)

var phaseNames = [numPhases]string{
	"flow_field", "particles", "frame_buffer", "composite", "present", "export",
}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// tickTiming is one recorded tick.
type tickTiming struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector keeps per-phase tick timings and presented-frame intervals
// over a rolling window.
type PerfCollector struct {
	now func() time.Time

	window int
	ticks  []tickTiming
	next   int
	count  int

	cur        tickTiming
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inTick     bool

	lastFrame time.Time
	gaps      []time.Duration
	gapNext   int
	gapCount  int
}

// NewPerfCollector creates a collector averaging over window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		now:    time.Now,
		window: window,
		ticks:  make([]tickTiming, window),
		gaps:   make([]time.Duration, window),
		phase:  -1,
	}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.cur = tickTiming{}
	p.phase = -1
	p.inTick = true
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := p.now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase >= 0 && p.phase < numPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the running phase and records the tick. It is a no-op
// without a matching StartTick.
func (p *PerfCollector) EndTick() {
	if !p.inTick {
		return
	}
	now := p.now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ticks[p.next] = p.cur
	p.next = (p.next + 1) % p.window
	if p.count < p.window {
		p.count++
	}
	p.phase = -1
	p.inTick = false
}

// RecordFrame marks a presented frame. The interval since the previous call
// feeds the FPS estimate.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.gaps[p.gapNext] = now.Sub(p.lastFrame)
		p.gapNext = (p.gapNext + 1) % p.window
		if p.gapCount < p.window {
			p.gapCount++
		}
	}
	p.lastFrame = now
}

// PerfStats aggregates the current window.
type PerfStats struct {
	Ticks           int
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration
	TicksPerSecond  float64

	// Indexed by Phase.
	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64

	// Zero until two frames have been presented.
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregates over the ticks and frames in the window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats

	if p.gapCount > 0 {
		gaps := make([]float64, p.gapCount)
		for i := range gaps {
			gaps[i] = float64(p.gaps[i])
		}
		s.FrameDuration = time.Duration(stat.Mean(gaps, nil))
		if s.FrameDuration > 0 {
			s.FPS = float64(time.Second) / float64(s.FrameDuration)
		}
	}

	if p.count == 0 {
		return s
	}

	totals := make([]float64, p.count)
	var sums [numPhases]time.Duration
	for i, t := range p.ticks[:p.count] {
		totals[i] = float64(t.total)
		for ph, d := range t.phases {
			sums[ph] += d
		}
	}

	mean := stat.Mean(totals, nil)
	slices.Sort(totals)

	s.Ticks = p.count
	s.AvgTickDuration = time.Duration(mean)
	s.MinTickDuration = time.Duration(totals[0])
	s.MaxTickDuration = time.Duration(totals[len(totals)-1])
	s.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, totals, nil))
	if mean > 0 {
		s.TicksPerSecond = float64(time.Second) / mean
	}

	for ph := range sums {
		s.PhaseAvg[ph] = sums[ph] / time.Duration(p.count)
		if mean > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / mean * 100
		}
	}
	return s
}

// LogStats logs the window at info level. Phases under 0.1% are omitted.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"p95_tick_us", s.P95TickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for ph := range numPhases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Float64("fps", s.FPS),
	}
	for ph := range numPhases {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.PhasePct[ph]))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd      int32   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	P95TickUS      int64   `csv:"p95_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	FPS            float64 `csv:"fps"`
	FlowFieldPct   float64 `csv:"flow_field_pct"`
	ParticlesPct   float64 `csv:"particles_pct"`
	FrameBufferPct float64 `csv:"frame_buffer_pct"`
	CompositePct   float64 `csv:"composite_pct"`
	PresentPct     float64 `csv:"present_pct"`
	ExportPct      float64 `csv:"export_pct"`
}

// ToCSV flattens s into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTickDuration.Microseconds(),
		MinTickUS:      s.MinTickDuration.Microseconds(),
		MaxTickUS:      s.MaxTickDuration.Microseconds(),
		P95TickUS:      s.P95TickDuration.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		FPS:            s.FPS,
		FlowFieldPct:   s.PhasePct[PhaseFlowField],
		ParticlesPct:   s.PhasePct[PhaseParticles],
		FrameBufferPct: s.PhasePct[PhaseFrameBuffer],
		CompositePct:   s.PhasePct[PhaseComposite],
		PresentPct:     s.PhasePct[PhasePresent],
		ExportPct:      s.PhasePct[PhaseExport],
	}
}
