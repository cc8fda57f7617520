package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emergent/config"
)

// KindRow is one agent kind's line in the colony section.
type KindRow struct {
	Name  string
	Color rl.Color
	Count int
}

// ColonyData is the polled colony summary shown on the panel.
type ColonyData struct {
	Kinds         []KindRow
	Carrying      int
	FoodRemaining float64
	TrailCoverage float64 // Percent
}

// PanelActions reports what the user asked for during one panel draw.
type PanelActions struct {
	PopulationChanged bool
	Reset             bool
}

// ControlsPanel renders the right-side control panel. Sliders and buttons
// write straight into the live config.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width, height int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		height:   height,
	}
}

// SetBounds moves and resizes the panel.
func (c *ControlsPanel) SetBounds(x, y, width, height int32) {
	c.x, c.y, c.width, c.height = x, y, width, height
}

// Contains reports whether a screen point falls on the panel.
func (c *ControlsPanel) Contains(px, py float32) bool {
	return px >= float32(c.x) && px < float32(c.x+c.width) && py >= float32(c.y) && py < float32(c.y+c.height)
}

// Draw renders the panel and applies edits to cfg.
func (c *ControlsPanel) Draw(cfg *config.Config, overlays *OverlayRegistry, colony ColonyData) PanelActions {
	var act PanelActions
	r := c.renderer
	pad := r.Theme.Padding

	r.DrawPanel(c.x, c.y, c.width, c.height)

	x := float32(c.x + pad)
	y := c.y + pad
	w := float32(c.width - 2*pad)

	rl.DrawText("Controls", int32(x), y, 18, rl.White)
	y += 28

	// Population
	y = r.DrawSectionHeader(int32(x), y, "Population")
	maxPop := float32(max(cfg.UI.MaxPopulation, 1))
	for _, p := range []struct {
		label string
		value *int
	}{
		{"Foragers", &cfg.Population.Foragers},
		{"Builders", &cfg.Population.Builders},
		{"Scouts", &cfg.Population.Scouts},
	} {
		n := c.intSlider(x, y, w, p.label, *p.value, maxPop)
		if n != *p.value {
			*p.value = n
			act.PopulationChanged = true
		}
		y += 24
	}
	y += 6

	// Simulation
	y = r.DrawSectionHeader(int32(x), y, "Simulation")
	cfg.Sim.SpeedMultiplier = c.floatSlider(x, y, w, "Speed", "%.2fx", cfg.Sim.SpeedMultiplier, 0.1, max(cfg.UI.MaxSpeed, 0.1))
	y += 24
	cfg.Pheromone.Decay = c.floatSlider(x, y, w, "Decay", "%.3f", cfg.Pheromone.Decay, 0.9, 0.999)
	y += 30

	// Toggles
	y = r.DrawSectionHeader(int32(x), y, "Behaviors")
	half := (w - 8) / 2
	third := (w - 16) / 3
	for i, t := range []struct {
		label string
		value *bool
	}{
		{"Flock", &cfg.Toggles.Flocking},
		{"Trails", &cfg.Toggles.Trails},
		{"Signals", &cfg.Toggles.Signals},
	} {
		bx := x + float32(i)*(third+8)
		if gui.Button(rl.Rectangle{X: bx, Y: float32(y), Width: third, Height: 24}, toggleText(*t.value, t.label+": on", t.label+": off")) {
			*t.value = !*t.value
		}
	}
	y += 34

	// Click mode
	y = r.DrawSectionHeader(int32(x), y, "Click Mode")
	for i, m := range config.Modes {
		bx := x + float32(i)*(third+8)
		label := m.String()
		if cfg.Mode == m {
			label = "[" + label + "]"
		}
		if gui.Button(rl.Rectangle{X: bx, Y: float32(y), Width: third, Height: 24}, label) {
			cfg.Mode = m
		}
	}
	y += 34

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 28}, "Reset") {
		act.Reset = true
	}
	y += 40

	// Colony
	y = r.DrawSectionHeader(int32(x), y, "Colony")
	for _, k := range colony.Kinds {
		y = r.DrawSwatchValue(int32(x), y, k.Color, k.Name, fmt.Sprintf("%d", k.Count))
	}
	y = r.DrawLabelValue(int32(x), y, "Carrying", fmt.Sprintf("%d", colony.Carrying))
	y = r.DrawLabelValue(int32(x), y, "Food left", fmt.Sprintf("%.0f", colony.FoodRemaining))
	y = r.DrawBar(int32(x), y, "Trails", float32(colony.TrailCoverage/100), int32(w))
	y += 8

	// Overlays, grouped by category
	if overlays != nil {
		y = r.DrawSectionHeader(int32(x), y, "Overlays")
		for _, cat := range overlays.Categories() {
			for _, desc := range overlays.ByCategory(cat) {
				c.drawToggle(int32(x), y, desc, overlays.IsEnabled(desc.ID), int32(w))
				y += r.Theme.LineHeight
			}
			y += 4
		}
	}

	return act
}

func (c *ControlsPanel) intSlider(x float32, y int32, w float32, label string, value int, maxValue float32) int {
	rl.DrawText(label, int32(x), y+4, c.renderer.Theme.FontSize, c.renderer.Theme.LabelColor)
	v := gui.SliderBar(rl.Rectangle{X: x + 70, Y: float32(y), Width: w - 110, Height: 18}, "", "", float32(value), 0, maxValue)
	rl.DrawText(fmt.Sprintf("%d", int(v)), int32(x+w-34), y+4, c.renderer.Theme.FontSize, c.renderer.Theme.ValueColor)
	return int(v)
}

func (c *ControlsPanel) floatSlider(x float32, y int32, w float32, label, format string, value, lo, hi float64) float64 {
	rl.DrawText(label, int32(x), y+4, c.renderer.Theme.FontSize, c.renderer.Theme.LabelColor)
	v := gui.SliderBar(rl.Rectangle{X: x + 70, Y: float32(y), Width: w - 110, Height: 18}, "", "", float32(value), float32(lo), float32(hi))
	rl.DrawText(fmt.Sprintf(format, v), int32(x+w-34), y+4, c.renderer.Theme.FontSize, c.renderer.Theme.ValueColor)
	if v == float32(value) {
		return value
	}
	return float64(v)
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = r.Theme.ActiveColor
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}
