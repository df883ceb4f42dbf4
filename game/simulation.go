package game

import (
	"fmt"

	"github.com/pthm-cable/afterglow/systems"
	"github.com/pthm-cable/afterglow/telemetry"
)

// Tick runs one frame: rebuild the field, move and draw the particles into
// the current frame, push it into the history, then composite the history and
// hand it to present. present may be nil.
func (s *Simulation) Tick(present Presenter) error {
	if s.closed {
		return ErrClosed
	}
	frame := s.frame + 1
	pc := s.perfCollector
	pc.StartTick()
	defer pc.EndTick()

	pc.StartPhase(telemetry.PhaseFlowField)
	s.grid = s.field.Generate()

	pc.StartPhase(telemetry.PhaseParticles)
	var rec systems.ParticleRecorder
	if s.exporter != nil {
		s.exporter.BeginFrame(frame)
		rec = s.exporter
	}
	res, err := s.particles.Step(s.grid, s.current, s.palette.Color(), rec)
	if err != nil {
		return fmt.Errorf("tick %d: %w", frame, err)
	}
	s.collector.RecordRespawns(res.Respawned)
	s.collector.RecordWraps(res.Wrapped)

	pc.StartPhase(telemetry.PhaseFrameBuffer)
	s.frames.Push(s.current)
	s.current = nil

	pc.StartPhase(telemetry.PhaseComposite)
	out := systems.Composite(s.frames, s.canvas, s.params.Background)

	pc.StartPhase(telemetry.PhasePresent)
	var presentErr error
	if present != nil {
		presentErr = present.Present(frame, out)
		pc.RecordFrame()
	}
	s.canvas.Release(out)
	s.current = s.newFrame()

	pc.StartPhase(telemetry.PhaseExport)
	var exportErr error
	if s.exporter != nil {
		exportErr = s.exporter.Flush()
	}

	s.palette.Advance()
	s.frame = frame
	s.flushTelemetry()

	if presentErr != nil {
		return fmt.Errorf("presenting frame %d: %w", frame, presentErr)
	}
	if exportErr != nil {
		return fmt.Errorf("exporting frame %d: %w", frame, exportErr)
	}
	return nil
}
