package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/afterglow/config"
	"github.com/pthm-cable/afterglow/game"
	"github.com/pthm-cable/afterglow/raster"
	"github.com/pthm-cable/afterglow/renderer"
	"github.com/pthm-cable/afterglow/systems"
	"github.com/pthm-cable/afterglow/telemetry"
)

type flags struct {
	configPath      string
	headless        bool
	surface         string
	seed            int64
	maxTicks        int
	outputDir       string
	framesDir       string
	saveEvery       int
	exportParticles bool
	logStats        bool
	statsWindow     int
	hud             bool
	plot            string
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.BoolVar(&f.headless, "headless", false, "Run without a window")
	flag.StringVar(&f.surface, "surface", "raster", "Headless drawing surface: raster or null")
	flag.Int64Var(&f.seed, "seed", 0, "RNG seed (0 = time-based)")
	flag.IntVar(&f.maxTicks, "max-ticks", -1, "Stop after N ticks (0 = unlimited, -1 = use config)")
	flag.StringVar(&f.outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.StringVar(&f.framesDir, "frames-dir", "frames", "Directory for saved PNG frames")
	flag.IntVar(&f.saveEvery, "save-every", -1, "Save every Nth composited frame (0 = never, -1 = use config)")
	flag.BoolVar(&f.exportParticles, "export-particles", false, "Write per-frame particle positions to particles.csv")
	flag.BoolVar(&f.logStats, "log-stats", false, "Output stats via slog")
	flag.BoolVar(&f.hud, "hud", true, "Draw the frame counter overlay in the window")
	flag.IntVar(&f.statsWindow, "stats-window", 0, "Stats window size in ticks (0 = use config)")
	flag.StringVar(&f.plot, "plot", "", "Headless: chart a stats column at exit ("+strings.Join(telemetry.PlotColumns, ", ")+")")
	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(f); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	if err := config.Init(f.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()

	params, err := game.ParamsFromConfig(cfg)
	if err != nil {
		return err
	}
	if f.maxTicks >= 0 {
		params.MaxTicks = int32(f.maxTicks)
	}
	saveEvery := cfg.Run.SaveEvery
	if f.saveEvery >= 0 {
		saveEvery = int32(f.saveEvery)
	}

	if f.exportParticles && f.outputDir == "" {
		return errors.New("-export-particles needs -output-dir")
	}

	rngSeed := f.seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if f.statsWindow > 0 {
		statsWindow = int32(f.statsWindow)
	}

	opts := game.Options{
		Seed:            rngSeed,
		LogStats:        f.logStats,
		StatsWindow:     statsWindow,
		PerfWindow:      cfg.Telemetry.PerfCollectorWindow,
		OutputDir:       f.outputDir,
		ExportParticles: f.exportParticles,
		Config:          cfg,
	}

	if f.headless {
		return runHeadless(params, opts, f.surface, f.framesDir, saveEvery, f.plot)
	}
	return runWindow(cfg, params, opts, f.framesDir, saveEvery, f.hud)
}

// runHeadless ticks on the CPU until the tick limit or SIGINT.
func runHeadless(params game.Params, opts game.Options, surface, framesDir string, saveEvery int32, plot string) error {
	var canvas systems.Canvas
	switch surface {
	case "raster":
		canvas = raster.NewCanvas(params.Width, params.Height)
	case "null":
		if saveEvery > 0 {
			return errors.New("-save-every needs -surface raster")
		}
		canvas = systems.NullCanvas{Width: params.Width, Height: params.Height}
	default:
		return fmt.Errorf("unknown surface %q (want raster or null)", surface)
	}

	var present game.Presenter
	if saveEvery > 0 {
		p, err := raster.NewPNGPresenter(framesDir, saveEvery)
		if err != nil {
			return err
		}
		present = p
	}

	var history telemetry.History
	if plot != "" {
		if _, err := history.Series(plot); err != nil {
			return err
		}
		opts.StatsCallback = history.Add
	}

	sim, err := game.New(params, canvas, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"surface", surface,
		"max_ticks", params.MaxTicks,
		"save_every", saveEvery,
	)

	var tickErr error
	for !sim.Done() && ctx.Err() == nil {
		if tickErr = sim.Tick(present); tickErr != nil {
			break
		}
	}
	if ctx.Err() != nil {
		slog.Info("interrupted", "tick", sim.Frame())
	} else if tickErr == nil {
		slog.Info("max ticks reached", "tick", sim.Frame())
	}

	closeErr := sim.Close()
	if plot != "" {
		chart, err := history.Plot(plot, 8, 60)
		if err != nil {
			return errors.Join(tickErr, closeErr, err)
		}
		if chart != "" {
			fmt.Fprintln(os.Stderr, chart)
		}
	}
	return errors.Join(tickErr, closeErr)
}

// runWindow draws into raylib render textures and shows them in a window.
func runWindow(cfg *config.Config, params game.Params, opts game.Options, framesDir string, saveEvery int32, hud bool) error {
	rl.InitWindow(int32(params.Width), int32(params.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	canvas := renderer.NewTextureCanvas(params.Width, params.Height)
	sim, err := game.New(params, canvas, opts)
	if err != nil {
		return err
	}
	// Textures must be unloaded while the window is still open.
	defer sim.Close()

	present := renderer.NewScreenPresenter(canvas)
	present.ShowHUD = hud
	present.SaveDir = framesDir
	present.SaveEvery = saveEvery
	present.Status = func() string {
		perf := sim.Perf().Stats()
		return fmt.Sprintf("Surfaces: %d  Tick: %s  Hue: %.0f",
			sim.Canvas().Live(), perf.AvgTickDuration.Round(time.Microsecond), sim.Palette().Hue)
	}

	for !rl.WindowShouldClose() && !sim.Done() {
		if err := sim.Tick(present); err != nil {
			return err
		}
	}
	return sim.Close()
}
