package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emergent/config"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyN) && g.paused {
		g.stepOnce = true
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	// Behavior toggles
	if rl.IsKeyPressed(rl.KeyF) {
		g.cfg.Toggles.Flocking = !g.cfg.Toggles.Flocking
	}
	if rl.IsKeyPressed(rl.KeyT) {
		g.cfg.Toggles.Trails = !g.cfg.Toggles.Trails
	}
	if rl.IsKeyPressed(rl.KeyG) {
		g.cfg.Toggles.Signals = !g.cfg.Toggles.Signals
	}

	// Click mode cycles observe -> add-food -> add-obstacle
	if rl.IsKeyPressed(rl.KeyM) {
		g.cfg.Mode = config.Modes[(int(g.cfg.Mode)+1)%len(config.Modes)]
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}

	if rl.IsKeyPressed(rl.KeyC) {
		rl.SetClipboardText(fmt.Sprintf("%d", g.sim.Seed()))
		slog.Info("seed copied to clipboard", "seed", g.sim.Seed())
	}

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, on, ok := g.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", id, "enabled", on)
		}
	}

	g.handleCameraInput()
	g.handleWorldClick()
}

// handleResize checks for window resize and propagates new dimensions.
// A world sized to the screen follows the window.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	viewW := g.viewportWidth()
	g.panel.SetBounds(int32(viewW), 0, int32(g.cfg.UI.PanelWidth), int32(h))
	g.perf.SetPosition(int32(viewW)-260, 16)
	g.camera.Resize(viewW, h)

	if g.cfg.World.Width == 0 || g.cfg.World.Height == 0 {
		g.sim.Resize(float64(viewW), float64(h))
		g.camera.SetWorld(float32(g.sim.Width()), float32(g.sim.Height()))
	}
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	mouse := rl.GetMousePosition()
	if mouse.X < g.viewportWidth() {
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			g.camera.ZoomBy(1 + wheel*0.1)
		}
		if rl.IsMouseButtonDown(rl.MouseButtonRight) {
			d := rl.GetMouseDelta()
			g.camera.Pan(-d.X, -d.Y)
		}
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleWorldClick forwards left clicks inside the viewport to the simulation.
func (g *Game) handleWorldClick() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	if g.panel.Contains(mouse.X, mouse.Y) || mouse.X >= g.viewportWidth() {
		return
	}
	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	g.sim.Click(float64(wx), float64(wy))
}
