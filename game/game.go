// Package game hosts the simulation in a raylib window or headless loop.
package game

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emergent/camera"
	"github.com/pthm-cable/emergent/components"
	"github.com/pthm-cable/emergent/config"
	"github.com/pthm-cable/emergent/renderer"
	"github.com/pthm-cable/emergent/sim"
	"github.com/pthm-cable/emergent/telemetry"
	"github.com/pthm-cable/emergent/ui"
)

// Options configures game construction.
type Options struct {
	Seed           uint64  // 0 = time-based
	LogStats       bool    // Emit window stats through slog
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // Empty = no CSV output
	Headless       bool    // No window, no renderers
	StepsPerUpdate int     // Ticks per Update call

	// Config overrides the global config. The game mutates it through the UI.
	Config *config.Config

	// StatsCallback is invoked every time a telemetry window is flushed.
	StatsCallback func(telemetry.WindowStats)
}

// Game owns a simulation and, outside headless mode, everything needed to
// show and steer it.
type Game struct {
	cfg    *config.Config
	sim    *sim.Simulation
	output *telemetry.OutputManager

	headless       bool
	paused         bool
	stepsPerUpdate int

	// Rendering
	camera   *camera.Camera
	field    *renderer.FieldRenderer
	world    *renderer.WorldRenderer
	hud      *ui.HUD
	panel    *ui.ControlsPanel
	perf     *ui.PerfPanel
	overlays *ui.OverlayRegistry

	// HUD snapshot, polled every cfg.UI.StatsRefreshTicks
	hudData     ui.HUDData
	colony      ui.ColonyData
	lastHUDTick int64
	stepOnce    bool // Advance one tick while paused

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game. Outside headless mode the raylib
// window must already exist.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	if opts.StatsWindowSec > 0 {
		cfg.Telemetry.StatsWindow = opts.StatsWindowSec
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	g := &Game{
		cfg:            cfg,
		output:         output,
		headless:       opts.Headless,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
	}

	g.sim = sim.New(cfg, sim.Options{
		Seed:          opts.Seed,
		LogStats:      opts.LogStats,
		Output:        output,
		StatsCallback: opts.StatsCallback,
	})

	if !g.headless {
		g.initGraphics()
	}
	g.refreshHUD()
	return g
}

// initGraphics sets up the camera, renderers and UI.
func (g *Game) initGraphics() {
	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())
	viewW := g.viewportWidth()

	g.camera = camera.New(viewW, g.screenHeight, float32(g.sim.Width()), float32(g.sim.Height()))
	g.field = renderer.NewFieldRenderer(renderer.TrailTint)
	g.world = renderer.NewWorldRenderer(g.camera)
	g.hud = ui.NewHUD()
	g.panel = ui.NewControlsPanel(int32(viewW), 0, int32(g.cfg.UI.PanelWidth), int32(g.screenHeight))
	g.perf = ui.NewPerfPanel(int32(viewW)-260, 16)
	g.overlays = ui.NewOverlayRegistry()
}

// viewportWidth is the screen width left for the world after the panel.
func (g *Game) viewportWidth() float32 {
	return max(g.screenWidth-float32(g.cfg.UI.PanelWidth), 1)
}

// Update handles input and advances the simulation by the frame time.
func (g *Game) Update() {
	g.handleInput()

	switch {
	case !g.paused:
		dt := sim.FrameDelta(time.Duration(float64(rl.GetFrameTime()) * float64(time.Second)))
		for range g.stepsPerUpdate {
			g.sim.Step(dt)
		}
	case g.stepOnce:
		g.sim.Step(1)
	}
	g.stepOnce = false

	if g.sim.Tick()-g.lastHUDTick >= int64(max(g.cfg.UI.StatsRefreshTicks, 1)) || g.sim.Tick() < g.lastHUDTick {
		g.refreshHUD()
	}
}

// UpdateHeadless advances the simulation by StepsPerUpdate nominal ticks.
func (g *Game) UpdateHeadless() {
	for range g.stepsPerUpdate {
		g.sim.Step(1)
	}
}

// refreshHUD polls the simulation for the numbers the HUD shows.
func (g *Game) refreshHUD() {
	stats := g.sim.Stats()
	env := g.sim.Environment()
	g.hudData = ui.HUDData{
		Title:         "Emergent Colony",
		FoodCollected: stats.FoodCollected,
		ActiveAgents:  stats.ActiveAgents,
		TrailCoverage: stats.TrailCoverage,
		Structures:    len(env.Structures),
		Signals:       len(env.Signals),
	}

	g.colony = ui.ColonyData{
		FoodRemaining: env.TotalFood(),
		TrailCoverage: stats.TrailCoverage,
	}
	for _, k := range components.Kinds {
		g.colony.Kinds = append(g.colony.Kinds, ui.KindRow{
			Name:  k.String(),
			Color: renderer.KindColor(k),
			Count: g.sim.Count(k),
		})
	}
	g.sim.EachAgent(func(a sim.AgentView) {
		if a.Carrying {
			g.colony.Carrying++
		}
	})

	g.lastHUDTick = g.sim.Tick()
}

// reset restarts the run with the same seed.
func (g *Game) reset() {
	g.sim.Reset()
	g.refreshHUD()
	slog.Info("simulation reset", "seed", g.sim.Seed())
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int64 { return g.sim.Tick() }

// Sim returns the hosted simulation.
func (g *Game) Sim() *sim.Simulation { return g.sim }

// Unload releases GPU resources and closes output files.
func (g *Game) Unload() {
	if g.field != nil {
		g.field.Unload()
	}
	if err := g.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
