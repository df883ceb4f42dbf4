package telemetry

import (
	"fmt"
	"image/color"
	"io"

	"github.com/gocarina/gocsv"
)

// ParticleRow is one drawn particle in the exported frame stream.
type ParticleRow struct {
	Frame int32   `csv:"frame"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	R     uint8   `csv:"r"`
	G     uint8   `csv:"g"`
	B     uint8   `csv:"b"`
	A     uint8   `csv:"a"`
}

// FrameExporter buffers the drawable state of every particle for the current
// tick and writes it as CSV in one batch. Rows keep the order particles were
// drawn in.
type FrameExporter struct {
	out   *csvSink
	frame int32
	rows  []ParticleRow
	total int
}

// NewFrameExporter creates an exporter writing to w.
func NewFrameExporter(w io.Writer) *FrameExporter {
	return &FrameExporter{out: &csvSink{w: w}}
}

// BeginFrame starts buffering rows for a tick. Rows left over from a frame
// that was never flushed are discarded.
func (e *FrameExporter) BeginFrame(frame int32) {
	e.frame = frame
	e.rows = e.rows[:0]
}

// Record implements systems.ParticleRecorder.
func (e *FrameExporter) Record(x, y float64, c color.NRGBA) {
	e.rows = append(e.rows, ParticleRow{
		Frame: e.frame,
		X:     x,
		Y:     y,
		R:     c.R,
		G:     c.G,
		B:     c.B,
		A:     c.A,
	})
}

// Pending returns the number of buffered rows.
func (e *FrameExporter) Pending() int {
	return len(e.rows)
}

// Total returns the number of rows written so far.
func (e *FrameExporter) Total() int {
	return e.total
}

// Flush writes the buffered rows.
func (e *FrameExporter) Flush() error {
	if len(e.rows) == 0 {
		return nil
	}
	if err := e.out.write(e.rows); err != nil {
		return fmt.Errorf("writing particles for frame %d: %w", e.frame, err)
	}
	e.total += len(e.rows)
	e.rows = e.rows[:0]
	return nil
}

// csvSink writes gocsv records, emitting the header only once.
type csvSink struct {
	w             io.Writer
	headerWritten bool
}

func (s *csvSink) write(records any) error {
	if !s.headerWritten {
		if err := gocsv.Marshal(records, s.w); err != nil {
			return err
		}
		s.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, s.w)
}
