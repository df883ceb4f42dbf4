// Flow field preview tool - interactive visualization with sliders.
//
// Usage:
//
//	go run ./cmd/fieldpreview [-config path]
//	go run ./cmd/fieldpreview -png field.png
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/afterglow/config"
	"github.com/pthm-cable/afterglow/raster"
	"github.com/pthm-cable/afterglow/systems"
	"github.com/pthm-cable/afterglow/telemetry"
)

const (
	windowWidth  = 1280
	windowHeight = 760
	previewW     = 800
	previewH     = 450
	panelWidth   = windowWidth - previewW - 30
)

var lineColor = color.NRGBA{R: 255, G: 255, B: 255, A: 160}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	pngPath := flag.String("png", "", "Render one field to this PNG and exit")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	p, err := newPreview(cfg)
	if err != nil {
		slog.Error("failed to build field", "error", err)
		os.Exit(1)
	}

	if *pngPath != "" {
		if err := p.savePNG(*pngPath); err != nil {
			slog.Error("failed to render field", "error", err)
			os.Exit(1)
		}
		return
	}
	runWindow(p)
}

// tuned is the part of the config the sliders change.
type tuned struct {
	Field config.FieldConfig `yaml:"field"`
	Noise config.NoiseConfig `yaml:"noise"`
}

// preview rasterizes the field on the CPU so the window and -png share one path.
type preview struct {
	defaults tuned
	params   tuned
	bg       color.NRGBA
	time     float64
	runSeed  int64 // stands in for noise.seed 0

	gen     *systems.FlowFieldGenerator
	grid    *systems.Grid
	canvas  *raster.Canvas
	surface *raster.Surface
}

func newPreview(cfg *config.Config) (*preview, error) {
	bg := cfg.Frames.Background
	params := tuned{Field: cfg.Field, Noise: cfg.Noise}
	canvas := raster.NewCanvas(cfg.Screen.Width, cfg.Screen.Height)

	p := &preview{
		defaults: params,
		params:   params,
		bg:       color.NRGBA{R: uint8(bg[0]), G: uint8(bg[1]), B: uint8(bg[2]), A: 255},
		runSeed:  time.Now().UnixNano(),
		canvas:   canvas,
		surface:  canvas.NewSurface().(*raster.Surface),
	}
	if err := p.rebuild(); err != nil {
		return nil, err
	}
	p.generate()
	return p, nil
}

// rebuild recreates the noise source and generator from params.
func (p *preview) rebuild() error {
	noise, err := systems.NewNoise(systems.NoiseSettings{
		Backend: p.params.Noise.Backend,
		Seed:    p.params.Noise.Seed,
		Octaves: p.params.Noise.Octaves,
		Falloff: p.params.Noise.Falloff,
	}.ResolveSeed(p.runSeed))
	if err != nil {
		return err
	}
	w, h := p.canvas.Size()
	f := p.params.Field
	p.gen = systems.NewFlowFieldGenerator(noise, systems.FieldSettings{
		Width:      float64(w),
		Height:     float64(h),
		Margin:     f.Margin,
		CellSize:   f.CellSize,
		NoiseInc:   f.NoiseInc,
		TimeStep:   f.TimeStep,
		AngleScale: f.AngleScale,
		Magnitude:  f.Magnitude,
	})
	return nil
}

// generate builds the field at the current time and draws it.
func (p *preview) generate() {
	p.gen.SetTime(p.time)
	p.grid = p.gen.Generate()
	p.surface.Clear(p.bg)
	systems.DrawField(p.surface, p.grid, 1, lineColor)
}

// step advances time by one simulation tick.
func (p *preview) step() {
	p.time = p.gen.Time()
	p.generate()
}

func (p *preview) savePNG(path string) error {
	if err := raster.SavePNG(path, p.surface.Image()); err != nil {
		return err
	}
	slog.Info("field rendered",
		"path", path,
		"cols", p.grid.Cols,
		"rows", p.grid.Rows,
		"mean_heading", telemetry.MeanHeading(p.grid.Headings()),
	)
	return nil
}

func (p *preview) yamlText() string {
	out, err := yaml.Marshal(p.params)
	if err != nil {
		return fmt.Sprintf("# %v", err)
	}
	return string(out)
}

func runWindow(p *preview) {
	rl.InitWindow(windowWidth, windowHeight, "Flow Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	w, h := p.canvas.Size()
	img := rl.GenImageColor(w, h, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	pixels := make([]color.RGBA, w*h)
	upload := func() {
		src := p.surface.Image()
		for i := range pixels {
			o := i * 4
			pixels[i] = color.RGBA{R: src.Pix[o], G: src.Pix[o+1], B: src.Pix[o+2], A: src.Pix[o+3]}
		}
		rl.UpdateTexture(texture, pixels)
	}
	upload()

	animating := false

	for !rl.WindowShouldClose() {
		needsRebuild := false
		needsRegen := false

		if animating {
			p.step()
			upload()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(w), Height: float32(h)},
			rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		statsY := int32(previewH + 25)
		rl.DrawText(fmt.Sprintf("Grid: %dx%d  Time: %.6f", p.grid.Cols, p.grid.Rows, p.time), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Mean heading: %.3f rad", telemetry.MeanHeading(p.grid.Headings())), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewW + 20)
		panelY := float32(10)

		rl.DrawText("Flow Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		f := &p.params.Field
		n := &p.params.Noise

		if v, changed := slider(panelX, &panelY, "Noise increment (per cell)", "%.3f", f.NoiseInc, 0.005, 0.2); changed {
			f.NoiseInc = v
			needsRebuild = true
		}
		if v, changed := slider(panelX, &panelY, "Angle scale (turns)", "%.2f", f.AngleScale/(2*math.Pi), 0.5, 4); changed {
			f.AngleScale = v * 2 * math.Pi
			needsRebuild = true
		}
		if v, changed := slider(panelX, &panelY, "Octaves", "%.0f", float64(n.Octaves), 1, 8); changed && int(v) != n.Octaves {
			n.Octaves = int(v)
			needsRebuild = true
		}
		if v, changed := slider(panelX, &panelY, "Falloff (amplitude per octave)", "%.2f", n.Falloff, 0.1, 0.9); changed {
			n.Falloff = v
			needsRebuild = true
		}
		if v, changed := slider(panelX, &panelY, "Seed", "%.0f", float64(n.Seed), 0, 99999); changed && int64(v) != n.Seed {
			n.Seed = int64(v)
			needsRebuild = true
		}
		panelY += 10

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			p.time = 0
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			n.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRebuild = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			p.params = p.defaults
			p.time = 0
			needsRebuild = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		text := p.yamlText()
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()

		if needsRebuild {
			if err := p.rebuild(); err != nil {
				slog.Error("rebuilding field", "error", err)
				continue
			}
			needsRegen = true
		}
		if needsRegen {
			p.generate()
			upload()
		}
	}
}

// slider draws a labelled slider at *y and advances *y past it.
func slider(x float32, y *float32, label, format string, value, lo, hi float64) (float64, bool) {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	next := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		fmt.Sprintf(format, lo), fmt.Sprintf(format, hi),
		float32(value), float32(lo), float32(hi),
	)
	rl.DrawText(fmt.Sprintf(format, value), int32(x+float32(panelWidth-70)), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	return float64(next), next != float32(value)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
