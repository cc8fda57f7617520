package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emergent/camera"
	"github.com/pthm-cable/emergent/components"
	"github.com/pthm-cable/emergent/sim"
	"github.com/pthm-cable/emergent/systems"
)

// Palette
var (
	Background     = rl.Color{R: 14, G: 17, B: 22, A: 255}
	TrailTint      = rl.Color{R: 255, G: 190, B: 80, A: 200}
	foodColor      = rl.Color{R: 90, G: 200, B: 110, A: 255}
	obstacleColor  = rl.Color{R: 70, G: 74, B: 84, A: 255}
	obstacleEdge   = rl.Color{R: 110, G: 116, B: 128, A: 255}
	structureColor = rl.Color{R: 170, G: 140, B: 220, A: 255}
	signalColor    = rl.Color{R: 120, G: 200, B: 255, A: 255}
	carryColor     = rl.Color{R: 255, G: 230, B: 120, A: 255}

	kindColors = [components.NumKinds]rl.Color{
		components.KindForager: {R: 240, G: 150, B: 60, A: 255},
		components.KindBuilder: {R: 180, G: 120, B: 240, A: 255},
		components.KindScout:   {R: 80, G: 200, B: 240, A: 255},
	}

	baseColors = []rl.Color{
		{R: 230, G: 90, B: 80, A: 255},
		{R: 80, G: 140, B: 230, A: 255},
		{R: 230, G: 200, B: 80, A: 255},
		{R: 120, G: 220, B: 140, A: 255},
	}
)

// KindColor returns the draw color for an agent kind.
func KindColor(k components.Kind) rl.Color {
	if int(k) < len(kindColors) {
		return kindColors[k]
	}
	return rl.White
}

// BaseColor returns the color for a base slot. Slots past the palette cycle.
func BaseColor(slot int) rl.Color {
	if slot < 0 {
		return rl.Gray
	}
	return baseColors[slot%len(baseColors)]
}

// agentRadius is the draw size of an agent in world units.
const agentRadius = 3.5

// WorldRenderer draws the environment and agents through a camera.
type WorldRenderer struct {
	cam *camera.Camera
}

// NewWorldRenderer creates a renderer bound to cam.
func NewWorldRenderer(cam *camera.Camera) *WorldRenderer {
	return &WorldRenderer{cam: cam}
}

// DrawEnvironment draws obstacles, structures, bases, food and signals,
// back to front.
func (w *WorldRenderer) DrawEnvironment(env *systems.Environment) {
	cam := w.cam
	zoom := cam.Zoom

	for _, o := range env.Obstacles {
		if !cam.IsVisible(float32(o.X), float32(o.Y), float32(o.Extent())) {
			continue
		}
		sx, sy := cam.WorldToScreen(float32(o.X), float32(o.Y))
		switch o.Shape {
		case systems.ShapeCircle:
			r := float32(o.Radius) * zoom
			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, obstacleColor)
			rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, r, obstacleEdge)
		case systems.ShapeRect:
			rw, rh := float32(o.W)*zoom, float32(o.H)*zoom
			rect := rl.Rectangle{X: sx - rw/2, Y: sy - rh/2, Width: rw, Height: rh}
			rl.DrawRectangleRec(rect, obstacleColor)
			rl.DrawRectangleLinesEx(rect, 1, obstacleEdge)
		}
	}

	for _, s := range env.Structures {
		if !cam.IsVisible(float32(s.X), float32(s.Y), 4) {
			continue
		}
		sx, sy := cam.WorldToScreen(float32(s.X), float32(s.Y))
		size := 5 * zoom
		c := rl.Fade(structureColor, float32(min(max(s.Opacity, 0), 1)))
		rl.DrawRectanglePro(rl.Rectangle{X: sx, Y: sy, Width: size, Height: size},
			rl.Vector2{X: size / 2, Y: size / 2}, 45, c)
	}

	for _, b := range env.Bases {
		sx, sy := cam.WorldToScreen(float32(b.X), float32(b.Y))
		r := float32(b.Radius) * zoom
		c := BaseColor(b.Slot)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, rl.Fade(c, 0.25))
		rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, r, c)
	}

	for _, f := range env.Foods {
		if !cam.IsVisible(float32(f.X), float32(f.Y), float32(f.Radius)) {
			continue
		}
		sx, sy := cam.WorldToScreen(float32(f.X), float32(f.Y))
		fill := float32(0)
		if f.MaxAmount > 0 {
			fill = float32(f.Amount / f.MaxAmount)
		}
		r := float32(f.Radius) * zoom
		rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, r, rl.Fade(foodColor, 0.5))
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r*float32(math.Sqrt(float64(fill))), foodColor)
	}

	for _, s := range env.Signals {
		sx, sy := cam.WorldToScreen(float32(s.X), float32(s.Y))
		a := float32(min(max(s.Opacity, 0), 1))
		rl.DrawRing(rl.Vector2{X: sx, Y: sy}, float32(s.Radius)*zoom-1.5, float32(s.Radius)*zoom+1.5,
			0, 360, 48, rl.Fade(signalColor, a))
	}
}

// DrawAgent draws one agent as a triangle pointing along its velocity.
func (w *WorldRenderer) DrawAgent(a sim.AgentView) {
	if !w.cam.IsVisible(float32(a.X), float32(a.Y), agentRadius*2) {
		return
	}
	sx, sy := w.cam.WorldToScreen(float32(a.X), float32(a.Y))
	heading := float32(math.Atan2(a.VY, a.VX))
	radius := agentRadius * w.cam.Zoom

	c := KindColor(a.Kind)
	if a.Kind == components.KindForager && a.BaseSlot >= 0 {
		c = BaseColor(a.BaseSlot)
	}
	drawOrientedTriangle(sx, sy, heading, radius, c)

	if a.Carrying {
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius*0.5, carryColor)
	}
}

// DrawBounds outlines the world rectangle.
func (w *WorldRenderer) DrawBounds(worldW, worldH float32) {
	x0, y0 := w.cam.WorldToScreen(0, 0)
	x1, y1 := w.cam.WorldToScreen(worldW, worldH)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 1, rl.DarkGray)
}

// drawOrientedTriangle draws a triangle pointing in the heading direction.
func drawOrientedTriangle(x, y, heading, radius float32, color rl.Color) {
	cos := float32(math.Cos(float64(heading)))
	sin := float32(math.Sin(float64(heading)))

	front := rl.Vector2{X: x + cos*radius*1.5, Y: y + sin*radius*1.5}

	backAngle := float64(heading) + math.Pi*0.8
	backLeft := rl.Vector2{X: x + float32(math.Cos(backAngle))*radius, Y: y + float32(math.Sin(backAngle))*radius}

	backAngle = float64(heading) - math.Pi*0.8
	backRight := rl.Vector2{X: x + float32(math.Cos(backAngle))*radius, Y: y + float32(math.Sin(backAngle))*radius}

	// DrawTriangle requires counter-clockwise winding
	rl.DrawTriangle(front, backRight, backLeft, color)
}

// DrawSenseRadius outlines an agent's perception range.
func (w *WorldRenderer) DrawSenseRadius(a sim.AgentView, radius float64) {
	if !w.cam.IsVisible(float32(a.X), float32(a.Y), float32(radius)) {
		return
	}
	sx, sy := w.cam.WorldToScreen(float32(a.X), float32(a.Y))
	rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, float32(radius)*w.cam.Zoom, rl.Fade(KindColor(a.Kind), 0.25))
}

// DrawLink draws a faint line from an agent to a world point.
func (w *WorldRenderer) DrawLink(a sim.AgentView, x, y float64, c rl.Color) {
	sx, sy := w.cam.WorldToScreen(float32(a.X), float32(a.Y))
	tx, ty := w.cam.WorldToScreen(float32(x), float32(y))
	rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: tx, Y: ty}, 1, rl.Fade(c, 0.3))
}
