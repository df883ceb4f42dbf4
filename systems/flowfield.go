package systems

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/pthm-cable/afterglow/vmath"
)

// ErrCellOutOfRange reports a flow field lookup outside the generated grid.
// Configured dimensions make this unreachable for legal particle positions.
var ErrCellOutOfRange = errors.New("flow field cell out of range")

// Grid is a row-major grid of flow vectors.
type Grid struct {
	Cols, Rows int
	CellSize   float64
	Vectors    []vmath.Vector
}

// NewGrid allocates a zeroed grid.
func NewGrid(cols, rows int, cellSize float64) *Grid {
	return &Grid{
		Cols:     cols,
		Rows:     rows,
		CellSize: cellSize,
		Vectors:  make([]vmath.Vector, cols*rows),
	}
}

// GridDims returns the grid dimensions needed to cover a width x height canvas
// plus margin on the right and bottom edges.
func GridDims(width, height, margin, cellSize float64) (cols, rows int) {
	cols = int(math.Floor((width + margin) / cellSize))
	rows = int(math.Floor((height + margin) / cellSize))
	return cols, rows
}

// At returns the vector stored at column x, row y.
func (g *Grid) At(x, y int) vmath.Vector {
	return g.Vectors[x+y*g.Cols]
}

// Cell returns the flow vector under world position (x, y).
// Positions less than one cell left of or above the canvas fold into the
// first column or row, covering the band particles may overshoot before the
// edge check runs.
func (g *Grid) Cell(x, y float64) (vmath.Vector, error) {
	col := int(math.Floor(x / g.CellSize))
	row := int(math.Floor(y / g.CellSize))
	if col == -1 {
		col = 0
	}
	if row == -1 {
		row = 0
	}
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return vmath.Vector{}, fmt.Errorf("%w: position (%.2f, %.2f) -> cell (%d, %d) of %dx%d",
			ErrCellOutOfRange, x, y, col, row, g.Cols, g.Rows)
	}
	return g.Vectors[col+row*g.Cols], nil
}

// Headings returns the angle of every cell vector in [0, 2*Pi), grid order.
func (g *Grid) Headings() []float64 {
	out := make([]float64, len(g.Vectors))
	for i, v := range g.Vectors {
		out[i] = normalizeHeading(v.Heading())
	}
	return out
}

// FieldSettings tunes flow field generation.
type FieldSettings struct {
	Width, Height float64
	Margin        float64
	CellSize      float64
	NoiseInc      float64 // noise step between adjacent cells
	TimeStep      float64 // time advance per generated row
	AngleScale    float64 // noise value to angle multiplier
	Magnitude     float64 // length of every cell vector
}

// FlowFieldGenerator rebuilds the flow field from noise every tick.
// The noise time coordinate is the only state carried between ticks.
type FlowFieldGenerator struct {
	noise    NoiseSource
	settings FieldSettings
	cols     int
	rows     int
	time     float64
}

// NewFlowFieldGenerator creates a generator sampling noise.
func NewFlowFieldGenerator(noise NoiseSource, s FieldSettings) *FlowFieldGenerator {
	cols, rows := GridDims(s.Width, s.Height, s.Margin, s.CellSize)
	return &FlowFieldGenerator{
		noise:    noise,
		settings: s,
		cols:     cols,
		rows:     rows,
	}
}

// Dims returns the generated grid size.
func (f *FlowFieldGenerator) Dims() (cols, rows int) {
	return f.cols, f.rows
}

// Time returns the current noise time coordinate.
func (f *FlowFieldGenerator) Time() float64 {
	return f.time
}

// SetTime moves the noise time coordinate, e.g. to replay a field.
func (f *FlowFieldGenerator) SetTime(t float64) {
	f.time = t
}

// Generate builds a fresh grid and advances time by one step per row.
func (f *FlowFieldGenerator) Generate() *Grid {
	s := f.settings
	g := NewGrid(f.cols, f.rows, s.CellSize)

	yNoise := 0.0
	for y := 0; y < f.rows; y++ {
		xNoise := 0.0
		for x := 0; x < f.cols; x++ {
			angle := f.noise.Noise(xNoise, yNoise, f.time) * s.AngleScale
			v := vmath.FromAngle(angle)
			v.SetMag(s.Magnitude)
			g.Vectors[x+y*f.cols] = v
			xNoise += s.NoiseInc
		}
		yNoise += s.NoiseInc
		f.time += s.TimeStep
	}

	return g
}

// DrawField draws each cell's heading as a line one cell long, starting at
// the cell's top-left corner.
func DrawField(s Surface, g *Grid, width float64, c color.NRGBA) {
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			h := g.At(x, y).Heading()
			x0, y0 := float64(x)*g.CellSize, float64(y)*g.CellSize
			s.Line(x0, y0, x0+math.Cos(h)*g.CellSize, y0+math.Sin(h)*g.CellSize, width, c)
		}
	}
}
