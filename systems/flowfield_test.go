package systems

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/pthm-cable/afterglow/vmath"
)

func hdFieldSettings() FieldSettings {
	return FieldSettings{
		Width:      1920,
		Height:     1080,
		Margin:     0,
		CellSize:   10,
		NoiseInc:   0.05,
		TimeStep:   0.00001 / 3,
		AngleScale: 4 * math.Pi,
		Magnitude:  3,
	}
}

func TestGridDims(t *testing.T) {
	tests := []struct {
		name               string
		w, h, margin, cell float64
		wantCols, wantRows int
	}{
		{"hd no margin", 1920, 1080, 0, 10, 192, 108},
		{"hd with margin", 1920, 1080, 50, 10, 197, 113},
		{"uneven", 105, 33, 0, 10, 10, 3},
		{"large cells", 800, 600, 50, 64, 13, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := GridDims(tt.w, tt.h, tt.margin, tt.cell)
			if cols != tt.wantCols || rows != tt.wantRows {
				t.Errorf("GridDims = %dx%d, want %dx%d", cols, rows, tt.wantCols, tt.wantRows)
			}
		})
	}
}

func TestGenerateRepeatable(t *testing.T) {
	noise, err := NewNoise(NoiseSettings{Backend: NoisePerlin, Seed: 42, Octaves: 4, Falloff: 0.5})
	if err != nil {
		t.Fatal(err)
	}

	gen := NewFlowFieldGenerator(noise, hdFieldSettings())
	cols, rows := gen.Dims()
	if cols != 192 || rows != 108 {
		t.Fatalf("expected 192x108 grid, got %dx%d", cols, rows)
	}

	start := gen.Time()
	a := gen.Generate()
	gen.SetTime(start)
	b := gen.Generate()

	if len(a.Vectors) != 192*108 || len(b.Vectors) != len(a.Vectors) {
		t.Fatalf("unexpected grid sizes %d, %d", len(a.Vectors), len(b.Vectors))
	}
	for i := range a.Vectors {
		if a.Vectors[i] != b.Vectors[i] {
			t.Fatalf("cell %d differs: %v vs %v", i, a.Vectors[i], b.Vectors[i])
		}
	}
}

func TestGenerateMagnitudeAndTime(t *testing.T) {
	noise := NewPerlinNoise(5)
	s := hdFieldSettings()
	s.Width, s.Height, s.Margin = 200, 100, 50
	gen := NewFlowFieldGenerator(noise, s)
	_, rows := gen.Dims()

	g := gen.Generate()
	for i, v := range g.Vectors {
		if math.Abs(v.Mag()-3) > 1e-9 {
			t.Fatalf("cell %d magnitude = %v, want 3", i, v.Mag())
		}
	}

	wantTime := float64(rows) * s.TimeStep
	if math.Abs(gen.Time()-wantTime) > 1e-15 {
		t.Errorf("time after one generation = %v, want %v", gen.Time(), wantTime)
	}

	prev := gen.Time()
	gen.Generate()
	if gen.Time() <= prev {
		t.Errorf("time must advance monotonically: %v -> %v", prev, gen.Time())
	}
}

func TestGenerateReplacesGrid(t *testing.T) {
	gen := NewFlowFieldGenerator(NewPerlinNoise(9), FieldSettings{
		Width: 100, Height: 100, Margin: 50, CellSize: 10,
		NoiseInc: 0.05, TimeStep: 0.5, AngleScale: 4 * math.Pi, Magnitude: 3,
	})
	a := gen.Generate()
	snapshot := append(a.Vectors[:0:0], a.Vectors...)
	b := gen.Generate()

	if a == b {
		t.Fatal("Generate must return a new grid")
	}
	for i := range snapshot {
		if a.Vectors[i] != snapshot[i] {
			t.Fatal("generating a new grid mutated the previous one")
		}
	}
}

func TestGridCell(t *testing.T) {
	g := NewGrid(4, 3, 10)
	for i := range g.Vectors {
		g.Vectors[i].X = float64(i)
	}

	tests := []struct {
		name    string
		x, y    float64
		wantIdx int
		wantErr bool
	}{
		{"origin", 0, 0, 0, false},
		{"cell boundary", 10, 10, 5, false},
		{"inside last", 39.9, 29.9, 11, false},
		{"left overshoot folds", -0.5, 15, 4, false},
		{"top overshoot folds", 25, -1, 2, false},
		{"past right", 40, 5, 0, true},
		{"past bottom", 5, 30, 0, true},
		{"far left", -10.5, 5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := g.Cell(tt.x, tt.y)
			if tt.wantErr {
				if !errors.Is(err, ErrCellOutOfRange) {
					t.Errorf("expected ErrCellOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if int(v.X) != tt.wantIdx {
				t.Errorf("Cell(%v, %v) = index %v, want %d", tt.x, tt.y, v.X, tt.wantIdx)
			}
		})
	}
}

func TestHeadingsNormalized(t *testing.T) {
	gen := NewFlowFieldGenerator(NewPerlinNoise(2), FieldSettings{
		Width: 60, Height: 60, CellSize: 10, NoiseInc: 0.3,
		TimeStep: 0.01, AngleScale: 4 * math.Pi, Magnitude: 3,
	})
	for _, h := range gen.Generate().Headings() {
		if h < 0 || h >= 2*math.Pi {
			t.Fatalf("heading %v outside [0, 2π)", h)
		}
	}
}

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		name string
		h    float64
		want float64
	}{
		{"zero", 0, 0},
		{"inside", 1, 1},
		{"full turn", 2 * math.Pi, 0},
		{"negative", -math.Pi / 2, 1.5 * math.Pi},
		{"tiny negative", -1e-17, 0},
		{"several turns", 5*math.Pi + 0.25, math.Pi + 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeHeading(tt.h)
			if got < 0 || got >= 2*math.Pi {
				t.Fatalf("normalizeHeading(%v) = %v, outside [0, 2π)", tt.h, got)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("normalizeHeading(%v) = %v, want %v", tt.h, got, tt.want)
			}
		})
	}
}

func TestDrawFieldOneLinePerCell(t *testing.T) {
	g := uniformGrid(7, 4, 10, vmath.New(0, 3, 0))
	surf := &recordingSurface{}
	DrawField(surf, g, 1, color.NRGBA{A: 255})
	if surf.lines != 28 {
		t.Errorf("lines = %d, want 28", surf.lines)
	}
	if surf.points != 0 {
		t.Errorf("points = %d, want 0", surf.points)
	}
}
