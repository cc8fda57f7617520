package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emergent/config"
	"github.com/pthm-cable/emergent/game"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")

	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
		Config:         cfg,
	}

	if *headless {
		runHeadless(opts, *maxTicks)
		return
	}
	runWindow(cfg, opts, *maxTicks)
}

// runHeadless steps until maxTicks or an interrupt, then logs a summary.
func runHeadless(opts game.Options, maxTicks int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"stats_window", opts.Config.Telemetry.StatsWindow,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	start := time.Now()
	for ctx.Err() == nil {
		g.UpdateHeadless()
		if maxTicks > 0 && g.Tick() >= int64(maxTicks) {
			break
		}
	}

	st := g.Sim().Stats()
	slog.Info("headless run finished",
		"tick", g.Tick(),
		"food_collected", st.FoodCollected,
		"active_agents", st.ActiveAgents,
		"trail_coverage", st.TrailCoverage,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
		"interrupted", ctx.Err() != nil,
	)
}

// runWindow opens a resizable window with the control panel to the right of
// the world view.
func runWindow(cfg *config.Config, opts game.Options, maxTicks int) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width+cfg.UI.PanelWidth), int32(cfg.Screen.Height), "Emergent Colony")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
		if maxTicks > 0 && g.Tick() >= int64(maxTicks) {
			return
		}
	}
}
