package telemetry

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/afterglow/config"
)

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(10)

	if c.ShouldFlush(9) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush at the window boundary")
	}

	c.RecordRespawns(3)
	c.RecordRespawns(2)
	c.RecordWraps(4)

	stats := c.Flush(10, Sample{
		Speeds:   []float64{0.5, 1, 1},
		Headings: []float64{0.2, 0.2},
		Hue:      42,
		Surfaces: SurfaceCounts{Live: 151, Peak: 152},
	})

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 10 {
		t.Errorf("window = [%d, %d], want [0, 10]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if stats.Respawns != 5 || stats.Wraps != 4 {
		t.Errorf("respawns %d wraps %d, want 5 and 4", stats.Respawns, stats.Wraps)
	}
	if stats.Particles != 3 || stats.SpeedP50 != 1 {
		t.Errorf("particles %d p50 %v", stats.Particles, stats.SpeedP50)
	}
	if stats.LiveSurfaces != 151 || stats.PeakSurfaces != 152 || stats.Hue != 42 {
		t.Errorf("sample fields not carried over: %+v", stats)
	}

	// Counters reset and the window moves.
	next := c.Flush(20, Sample{})
	if next.WindowStartTick != 10 || next.Respawns != 0 || next.Wraps != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if c.ShouldFlush(29) || !c.ShouldFlush(30) {
		t.Error("window boundary did not advance")
	}
}

func TestCollectorMinimumWindow(t *testing.T) {
	if got := NewCollector(0).WindowDurationTicks(); got != 1 {
		t.Errorf("window = %d, want 1", got)
	}
}

func TestFrameExporterOrderAndHeader(t *testing.T) {
	var buf bytes.Buffer
	e := NewFrameExporter(&buf)

	e.BeginFrame(1)
	e.Record(1.5, 2, color.NRGBA{R: 255, A: 13})
	e.Record(3, 4.25, color.NRGBA{G: 255, A: 13})
	if e.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", e.Pending())
	}
	if err := e.Flush(); err != nil {
		t.Fatal(err)
	}

	e.BeginFrame(2)
	e.Record(5, 6, color.NRGBA{B: 255, A: 13})
	if err := e.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "frame,x,y,r,g,b,a\n" +
		"1,1.5,2,255,0,0,13\n" +
		"1,3,4.25,0,255,0,13\n" +
		"2,5,6,0,0,255,13\n"
	if buf.String() != want {
		t.Errorf("csv output:\n%s\nwant:\n%s", buf.String(), want)
	}
	if e.Total() != 3 || e.Pending() != 0 {
		t.Errorf("total %d pending %d", e.Total(), e.Pending())
	}
}

func TestFrameExporterDiscardsUnflushed(t *testing.T) {
	var buf bytes.Buffer
	e := NewFrameExporter(&buf)

	e.BeginFrame(1)
	e.Record(1, 1, color.NRGBA{})
	e.BeginFrame(2)
	if e.Pending() != 0 {
		t.Errorf("pending = %d after BeginFrame, want 0", e.Pending())
	}
	if err := e.Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty flush wrote %q", buf.String())
	}
}

func TestOutputManager(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir, true)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 300, Particles: 10}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 600, Particles: 10}); err != nil {
		t.Fatal(err)
	}
	if err := om.WritePerf(PerfStats{AvgTickDuration: time.Millisecond}, 300); err != nil {
		t.Fatal(err)
	}

	px := om.Particles()
	px.BeginFrame(7)
	px.Record(1, 2, color.NRGBA{A: 13})
	// Left pending; Close must flush it.

	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "particles.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "window_end,particles") {
		t.Errorf("telemetry.csv has unexpected layout:\n%s", data)
	}

	data, err = os.ReadFile(filepath.Join(dir, "particles.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "7,1,2,0,0,0,13") {
		t.Errorf("particles.csv missing pending row:\n%s", data)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	if _, err := NewOutputManager("", true); !errors.Is(err, ErrExportWithoutDir) {
		t.Errorf("export without dir = %v, want ErrExportWithoutDir", err)
	}

	om, err := NewOutputManager("", false)
	if err != nil || om != nil {
		t.Fatalf("expected nil manager, got %v, %v", om, err)
	}
	// Nil receivers are no-ops.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if om.Particles() != nil || om.Dir() != "" || om.Close() != nil {
		t.Error("nil manager should be inert")
	}
}
