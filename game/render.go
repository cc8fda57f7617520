package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emergent/components"
	"github.com/pthm-cable/emergent/renderer"
	"github.com/pthm-cable/emergent/sim"
	"github.com/pthm-cable/emergent/ui"
)

// Draw renders the game state.
func (g *Game) Draw() {
	g.sim.Perf().RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(renderer.Background)

	worldW, worldH := float32(g.sim.Width()), float32(g.sim.Height())

	rl.BeginScissorMode(0, 0, int32(g.viewportWidth()), int32(g.screenHeight))

	if g.overlays.IsEnabled(ui.OverlayTrailField) {
		grid := g.sim.Grid()
		cols, rows := grid.Size()
		g.field.Update(grid.Values(), cols, rows)
		g.field.Draw(g.camera, worldW, worldH, float32(grid.CellSize()))
	}

	g.world.DrawBounds(worldW, worldH)
	g.world.DrawEnvironment(g.sim.Environment())
	g.drawAgents()

	rl.EndScissorMode()

	g.drawUI()

	rl.EndDrawing()
}

// drawAgents draws every agent plus the per-agent overlays.
func (g *Game) drawAgents() {
	showSense := g.overlays.IsEnabled(ui.OverlaySenseRadius)
	showLinks := g.overlays.IsEnabled(ui.OverlayBaseLinks)
	bases := g.sim.Environment().Bases
	agents := g.cfg.Agents

	g.sim.EachAgent(func(a sim.AgentView) {
		if showSense {
			radius := agents.Forager.SenseRadius
			switch a.Kind {
			case components.KindBuilder:
				radius = agents.Builder.SenseRadius
			case components.KindScout:
				radius = agents.Scout.SenseRadius
			}
			g.world.DrawSenseRadius(a, radius)
		}
		if showLinks && a.Carrying && a.BaseSlot >= 0 && a.BaseSlot < len(bases) {
			b := bases[a.BaseSlot]
			g.world.DrawLink(a, b.X, b.Y, renderer.BaseColor(b.Slot))
		}
		g.world.DrawAgent(a)
	})
}

// drawUI draws the HUD, control panel and optional perf panel.
func (g *Game) drawUI() {
	data := g.hudData
	data.Tick = g.sim.Tick()
	data.StepsPerUpdate = g.stepsPerUpdate
	data.FPS = rl.GetFPS()
	data.Paused = g.paused
	data.Mode = g.cfg.Mode.String()
	g.hud.Draw(data)

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perf.Draw(g.sim.Perf().Stats())
	}

	act := g.panel.Draw(g.cfg, g.overlays, g.colony)
	if act.PopulationChanged {
		g.sim.SyncAgentCounts()
	}
	if act.Reset {
		g.reset()
	}

	g.hud.DrawControls(int32(g.screenHeight),
		"SPACE: Pause | N: Step | < >: Speed | F/T/G: Flock/Trails/Signals | M: Mode | R: Reset | Click: Place | 1-4: Overlays")
}
