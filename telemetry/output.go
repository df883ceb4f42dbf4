package telemetry

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/afterglow/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir           string
	telemetryFile *os.File
	perfFile      *os.File
	particleFile  *os.File
	particleBuf   *bufio.Writer

	telemetry *csvSink
	perf      *csvSink
	particles *FrameExporter
}

// ErrExportWithoutDir is returned when particle export is requested with no
// output directory.
var ErrExportWithoutDir = errors.New("particle export needs an output directory")

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled). When exportParticles is set,
// particles.csv receives every drawn particle of every tick.
func NewOutputManager(dir string, exportParticles bool) (*OutputManager, error) {
	if dir == "" {
		if exportParticles {
			return nil, ErrExportWithoutDir
		}
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	om.telemetryFile = f
	om.telemetry = &csvSink{w: f}

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f
	om.perf = &csvSink{w: f}

	if exportParticles {
		f, err = os.Create(filepath.Join(dir, "particles.csv"))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating particles.csv: %w", err)
		}
		om.particleFile = f
		om.particleBuf = bufio.NewWriterSize(f, 1<<20)
		om.particles = NewFrameExporter(om.particleBuf)
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.telemetry.write([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Particles returns the particle exporter, or nil when export is disabled.
func (om *OutputManager) Particles() *FrameExporter {
	if om == nil {
		return nil
	}
	return om.particles
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.particles != nil {
		keep(om.particles.Flush())
	}
	if om.particleBuf != nil {
		keep(om.particleBuf.Flush())
	}
	for _, f := range []*os.File{om.telemetryFile, om.perfFile, om.particleFile} {
		if f != nil {
			keep(f.Close())
		}
	}

	return firstErr
}
