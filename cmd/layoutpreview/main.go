// Layout preview tool - shows the noise field that places obstacles and food,
// with sliders for its parameters and the resulting initial environment.
//
// Usage: go run ./cmd/layoutpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emergent/config"
	"github.com/pthm-cable/emergent/renderer"
	"github.com/pthm-cable/emergent/sim"
	"github.com/pthm-cable/emergent/systems"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewW     = 720
	panelX       = previewW + 30
	panelWidth   = windowWidth - panelX - 20
	gridW        = 250
)

// previewParams holds the editable layout and population values.
type previewParams struct {
	NoiseScale float32
	Threshold  float32
	Margin     float32
	Obstacles  int
	Foods      int
	Seed       uint64
	Enabled    bool
}

func paramsFrom(cfg *config.Config, seed uint64) previewParams {
	return previewParams{
		NoiseScale: float32(cfg.Layout.NoiseScale),
		Threshold:  float32(cfg.Layout.Threshold),
		Margin:     float32(cfg.Layout.Margin),
		Obstacles:  cfg.Obstacle.Initial,
		Foods:      cfg.Food.Initial,
		Seed:       seed,
		Enabled:    cfg.Layout.Enabled,
	}
}

// apply writes the params into a copy of base with no agents.
func (p previewParams) apply(base *config.Config) *config.Config {
	cfg := base.Clone()
	cfg.Layout.NoiseScale = float64(p.NoiseScale)
	cfg.Layout.Threshold = float64(p.Threshold)
	cfg.Layout.Margin = float64(p.Margin)
	cfg.Layout.Enabled = p.Enabled
	cfg.Obstacle.Initial = p.Obstacles
	cfg.Food.Initial = p.Foods
	cfg.Population = config.PopulationConfig{}
	return cfg
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))

	base, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Layout Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	defaults := paramsFrom(base, 12345)
	params := defaults

	aspect := base.Derived.WorldH / base.Derived.WorldW
	gridH := max(int(gridW*aspect), 1)
	previewH := float32(previewW * aspect)

	pixels := make([]color.RGBA, gridW*gridH)
	img := rl.GenImageColor(gridW, gridH, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var s *sim.Simulation
	var coverage float64
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			cfg := params.apply(base)
			s = sim.New(cfg, sim.Options{Seed: params.Seed})
			coverage = fillField(pixels, gridW, gridH, s.Layout(), cfg)
			rl.UpdateTexture(texture, pixels)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Field and placed features
		dest := rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH}
		rl.DrawTexturePro(texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridW, Height: float32(gridH)},
			dest, rl.Vector2{}, 0, rl.White)
		drawFeatures(s, dest)
		rl.DrawRectangleLinesEx(dest, 1, rl.DarkGray)

		statsY := int32(dest.Y + dest.Height + 12)
		env := s.Environment()
		rl.DrawText(fmt.Sprintf("Above threshold: %.1f%%  Obstacles: %d  Food: %d  Bases: %d",
			coverage*100, len(env.Obstacles), len(env.Foods), len(env.Bases)), 15, statsY, 16, rl.DarkGray)

		// Control panel
		y := float32(10)
		rl.DrawText("Layout Parameters", panelX, int32(y), 20, rl.DarkGray)
		y += 35

		var changed bool
		params.NoiseScale, changed = slider(y, "Noise scale", "%.4f", params.NoiseScale, 0.001, 0.03)
		needsRegen = needsRegen || changed
		y += 45
		params.Threshold, changed = slider(y, "Threshold", "%.2f", params.Threshold, 0, 1)
		needsRegen = needsRegen || changed
		y += 45
		params.Margin, changed = slider(y, "Margin", "%.0f", params.Margin, 0, 150)
		needsRegen = needsRegen || changed
		y += 45

		var v float32
		v, changed = slider(y, "Obstacles", "%.0f", float32(params.Obstacles), 0, 40)
		params.Obstacles = int(v)
		needsRegen = needsRegen || changed
		y += 45
		v, changed = slider(y, "Food sources", "%.0f", float32(params.Foods), 0, 40)
		params.Foods = int(v)
		needsRegen = needsRegen || changed
		y += 45
		v, changed = slider(y, "Seed", "%.0f", float32(params.Seed), 0, 99999)
		if changed {
			params.Seed = uint64(v)
			needsRegen = true
		}
		y += 55

		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, toggleText(params.Enabled, "Noise: on", "Noise: off")) {
			params.Enabled = !params.Enabled
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: y, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = uint64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		y += 40
		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			needsRegen = true
		}
		y += 55

		rl.DrawText("YAML Config:", panelX, int32(y), 16, rl.DarkGray)
		y += 25
		for _, line := range yamlLines(params) {
			rl.DrawText(line, panelX, int32(y), 14, rl.Gray)
			y += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", panelX, windowHeight-30, 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			text := ""
			for _, line := range yamlLines(params) {
				text += line + "\n"
			}
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled slider and reports whether the value moved.
func slider(y float32, label, format string, value, lo, hi float32) (float32, bool) {
	rl.DrawText(label, panelX, int32(y), 14, rl.Gray)
	next := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: y + 18, Width: panelWidth - 70, Height: 20},
		"", "", value, lo, hi,
	)
	rl.DrawText(fmt.Sprintf(format, next), panelX+panelWidth-60, int32(y+20), 16, rl.DarkGray)
	return next, next != value
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func yamlLines(p previewParams) []string {
	return []string{
		"layout:",
		fmt.Sprintf("  enabled: %t", p.Enabled),
		fmt.Sprintf("  noise_scale: %.4f", p.NoiseScale),
		fmt.Sprintf("  threshold: %.2f", p.Threshold),
		fmt.Sprintf("  margin: %.0f", p.Margin),
		"obstacle:",
		fmt.Sprintf("  initial: %d", p.Obstacles),
		"food:",
		fmt.Sprintf("  initial: %d", p.Foods),
	}
}

// fillField shades the noise field, highlighting accepted cells. Returns the
// fraction of cells at or above the threshold.
func fillField(pixels []color.RGBA, w, h int, layout *systems.Layout, cfg *config.Config) float64 {
	above := 0
	for y := range h {
		wy := (float64(y) + 0.5) * cfg.Derived.WorldH / float64(h)
		for x := range w {
			wx := (float64(x) + 0.5) * cfg.Derived.WorldW / float64(w)
			v := layout.Sample(wx, wy)
			shade := uint8(40 + v*160)
			c := color.RGBA{R: shade, G: shade, B: shade, A: 255}
			if v >= cfg.Layout.Threshold {
				above++
				c.G = uint8(min(int(shade)+50, 255))
			}
			pixels[y*w+x] = c
		}
	}
	return float64(above) / float64(w*h)
}

// drawFeatures draws bases, obstacles and food scaled into dest.
func drawFeatures(s *sim.Simulation, dest rl.Rectangle) {
	scale := dest.Width / float32(s.Width())
	at := func(x, y float64) rl.Vector2 {
		return rl.Vector2{X: dest.X + float32(x)*scale, Y: dest.Y + float32(y)*scale}
	}
	env := s.Environment()

	for _, o := range env.Obstacles {
		p := at(o.X, o.Y)
		switch o.Shape {
		case systems.ShapeCircle:
			rl.DrawCircleV(p, float32(o.Radius)*scale, rl.Fade(rl.DarkGray, 0.8))
		case systems.ShapeRect:
			w, h := float32(o.W)*scale, float32(o.H)*scale
			rl.DrawRectangleRec(rl.Rectangle{X: p.X - w/2, Y: p.Y - h/2, Width: w, Height: h}, rl.Fade(rl.DarkGray, 0.8))
		}
	}
	for _, b := range env.Bases {
		rl.DrawCircleLinesV(at(b.X, b.Y), float32(b.Radius)*scale, renderer.BaseColor(b.Slot))
	}
	for _, f := range env.Foods {
		rl.DrawCircleV(at(f.X, f.Y), float32(f.Radius)*scale, rl.Lime)
	}
}
