// Command ebitenview runs the flow field simulation in an ebiten window.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/afterglow/config"
	"github.com/pthm-cable/afterglow/ebitensurf"
	"github.com/pthm-cable/afterglow/game"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", -1, "Stop after N ticks (0 = unlimited, -1 = use config)")
	antialias := flag.Bool("antialias", true, "Anti-alias particles and trails")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	hud := flag.Bool("hud", true, "Draw the frame counter overlay")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	params, err := game.ParamsFromConfig(cfg)
	if err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if *maxTicks >= 0 {
		params.MaxTicks = int32(*maxTicks)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	canvas := ebitensurf.NewCanvas(params.Width, params.Height, *antialias)
	sim, err := game.New(params, canvas, game.Options{
		Seed:        rngSeed,
		LogStats:    *logStats,
		StatsWindow: cfg.Telemetry.StatsWindow,
		PerfWindow:  cfg.Telemetry.PerfCollectorWindow,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}

	view := ebitensurf.NewView(sim, *hud)
	runErr := view.Run(cfg.Screen.Title, cfg.Screen.TargetFPS)
	if err := errors.Join(runErr, sim.Close()); err != nil {
		slog.Error("simulation stopped", "error", err)
		os.Exit(1)
	}
}
