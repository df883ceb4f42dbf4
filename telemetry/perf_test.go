package telemetry

import (
	"math"
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPerf(window int) (*PerfCollector, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	pc := NewPerfCollector(window)
	pc.now = clk.now
	return pc, clk
}

// runTick records one tick spending the given time in each phase, in order.
func runTick(pc *PerfCollector, clk *fakeClock, phases map[Phase]time.Duration) {
	pc.StartTick()
	for ph := range numPhases {
		d, ok := phases[ph]
		if !ok {
			continue
		}
		pc.StartPhase(ph)
		clk.advance(d)
	}
	pc.EndTick()
}

func TestPerfPhaseBreakdown(t *testing.T) {
	pc, clk := newTestPerf(10)

	for range 4 {
		runTick(pc, clk, map[Phase]time.Duration{
			PhaseFlowField: 6 * time.Millisecond,
			PhaseParticles: 3 * time.Millisecond,
			PhaseComposite: time.Millisecond,
		})
	}

	s := pc.Stats()
	if s.Ticks != 4 {
		t.Fatalf("Ticks = %d, want 4", s.Ticks)
	}
	if s.AvgTickDuration != 10*time.Millisecond {
		t.Errorf("AvgTickDuration = %v, want 10ms", s.AvgTickDuration)
	}
	if math.Abs(s.TicksPerSecond-100) > 1e-9 {
		t.Errorf("TicksPerSecond = %v, want 100", s.TicksPerSecond)
	}

	tests := []struct {
		phase Phase
		avg   time.Duration
		pct   float64
	}{
		{PhaseFlowField, 6 * time.Millisecond, 60},
		{PhaseParticles, 3 * time.Millisecond, 30},
		{PhaseFrameBuffer, 0, 0},
		{PhaseComposite, time.Millisecond, 10},
		{PhasePresent, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			if s.PhaseAvg[tt.phase] != tt.avg {
				t.Errorf("avg = %v, want %v", s.PhaseAvg[tt.phase], tt.avg)
			}
			if math.Abs(s.PhasePct[tt.phase]-tt.pct) > 1e-9 {
				t.Errorf("pct = %v, want %v", s.PhasePct[tt.phase], tt.pct)
			}
		})
	}

	row := s.ToCSV(300)
	if row.WindowEnd != 300 || math.Abs(row.FlowFieldPct-60) > 1e-9 || row.AvgTickUS != 10000 {
		t.Errorf("ToCSV = %+v", row)
	}
}

func TestPerfRollingWindowKeepsNewest(t *testing.T) {
	pc, clk := newTestPerf(3)

	// Two slow ticks fall out of a window of three.
	for _, d := range []time.Duration{100, 100, 1, 2, 3} {
		runTick(pc, clk, map[Phase]time.Duration{PhaseParticles: d * time.Millisecond})
	}

	s := pc.Stats()
	if s.Ticks != 3 {
		t.Fatalf("Ticks = %d, want 3", s.Ticks)
	}
	if s.MinTickDuration != time.Millisecond || s.MaxTickDuration != 3*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 1ms/3ms", s.MinTickDuration, s.MaxTickDuration)
	}
	if s.AvgTickDuration != 2*time.Millisecond {
		t.Errorf("AvgTickDuration = %v, want 2ms", s.AvgTickDuration)
	}
	if s.P95TickDuration != 3*time.Millisecond {
		t.Errorf("P95TickDuration = %v, want 3ms", s.P95TickDuration)
	}
}

func TestPerfFrameRate(t *testing.T) {
	pc, clk := newTestPerf(10)

	pc.RecordFrame()
	if s := pc.Stats(); s.FPS != 0 {
		t.Errorf("FPS after one frame = %v, want 0", s.FPS)
	}

	for range 5 {
		clk.advance(20 * time.Millisecond)
		pc.RecordFrame()
	}

	s := pc.Stats()
	if s.FrameDuration != 20*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 20ms", s.FrameDuration)
	}
	if math.Abs(s.FPS-50) > 1e-9 {
		t.Errorf("FPS = %v, want 50", s.FPS)
	}
	if s.ToCSV(0).FPS != s.FPS {
		t.Error("fps column not carried into the CSV row")
	}
}

func TestPerfEmptyAndUnpaired(t *testing.T) {
	pc, _ := newTestPerf(0)

	pc.EndTick()
	s := pc.Stats()
	if s.Ticks != 0 || s.AvgTickDuration != 0 || s.FPS != 0 {
		t.Errorf("empty stats = %+v", s)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseFrameBuffer.String() != "frame_buffer" {
		t.Errorf("PhaseFrameBuffer = %q", PhaseFrameBuffer.String())
	}
	if Phase(42).String() != "unknown" {
		t.Errorf("Phase(42) = %q", Phase(42).String())
	}
}
