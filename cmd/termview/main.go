// Terminal viewer - runs the colony simulation and draws it with tcell.
//
// Usage: go run ./cmd/termview [-config path] [-seed n]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/emergent/components"
	"github.com/pthm-cable/emergent/config"
	"github.com/pthm-cable/emergent/sim"
)

// Terminal palette
var (
	styleDefault   = tcell.StyleDefault.Background(tcell.NewRGBColor(14, 17, 22)).Foreground(tcell.ColorSilver)
	styleStatus    = tcell.StyleDefault.Background(tcell.NewRGBColor(34, 38, 46)).Foreground(tcell.ColorWhite)
	styleObstacle  = styleDefault.Foreground(tcell.NewRGBColor(110, 116, 128))
	styleStructure = styleDefault.Foreground(tcell.NewRGBColor(170, 140, 220))
	styleSignal    = styleDefault.Foreground(tcell.NewRGBColor(120, 200, 255))
	styleFood      = styleDefault.Foreground(tcell.NewRGBColor(90, 200, 110)).Bold(true)

	kindStyles = [components.NumKinds]tcell.Style{
		components.KindForager: styleDefault.Foreground(tcell.NewRGBColor(240, 150, 60)),
		components.KindBuilder: styleDefault.Foreground(tcell.NewRGBColor(180, 120, 240)),
		components.KindScout:   styleDefault.Foreground(tcell.NewRGBColor(80, 200, 240)),
	}

	baseColors = []tcell.Color{
		tcell.NewRGBColor(230, 90, 80),
		tcell.NewRGBColor(80, 140, 230),
		tcell.NewRGBColor(230, 200, 80),
		tcell.NewRGBColor(120, 220, 140),
	}
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	fps := flag.Int("fps", 30, "Redraw rate")
	flag.Parse()

	// The screen owns stdout, so logs go nowhere unless redirected
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *seed, max(*fps, 1)); err != nil {
		fmt.Fprintf(os.Stderr, "termview: %v\n", err)
		os.Exit(1)
	}
}

// viewer holds the terminal session state.
type viewer struct {
	screen tcell.Screen
	sim    *sim.Simulation
	cfg    *config.Config

	paused     bool
	showTrails bool
	steps      int
	buttons    tcell.ButtonMask // Mouse buttons held at the last event
}

func run(cfg *config.Config, seed uint64, fps int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	screen.SetStyle(styleDefault)
	screen.EnableMouse()

	v := &viewer{
		screen:     screen,
		sim:        sim.New(cfg, sim.Options{Seed: seed}),
		cfg:        cfg,
		showTrails: true,
		steps:      1,
	}

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()
	defer close(quit)

	frame := time.Second / time.Duration(fps)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case ev := <-events:
			if !v.handleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			if !v.paused {
				dt := sim.FrameDelta(now.Sub(last))
				for range v.steps {
					v.sim.Step(dt)
				}
			}
			last = now
			v.draw()
		}
	}
}

// handleEvent applies one input event. Returns false to quit.
func (v *viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
			case 'n':
				if v.paused {
					v.sim.Step(1)
				}
			case 'f':
				v.cfg.Toggles.Flocking = !v.cfg.Toggles.Flocking
			case 't':
				v.cfg.Toggles.Trails = !v.cfg.Toggles.Trails
			case 'g':
				v.cfg.Toggles.Signals = !v.cfg.Toggles.Signals
			case 'v':
				v.showTrails = !v.showTrails
			case 'm':
				v.cfg.Mode = config.Modes[(int(v.cfg.Mode)+1)%len(config.Modes)]
			case 'r':
				v.sim.Reset()
			case ',', '<':
				v.steps = max(v.steps-1, 1)
			case '.', '>':
				v.steps = min(v.steps+1, 10)
			}
		}
	case *tcell.EventMouse:
		pressed := ev.Buttons() &^ v.buttons
		v.buttons = ev.Buttons()
		if pressed&tcell.Button1 != 0 {
			v.click(ev.Position())
		}
	}
	return true
}

// click forwards a mouse click in the world area to the simulation.
func (v *viewer) click(col, row int) {
	w, h := v.screen.Size()
	rows := h - 1
	if row >= rows || w <= 0 || rows <= 0 {
		return
	}
	x := (float64(col) + 0.5) * v.sim.Width() / float64(w)
	y := (float64(row) + 0.5) * v.sim.Height() / float64(rows)
	v.sim.Click(x, y)
}

// draw renders the world and a status line.
func (v *viewer) draw() {
	w, h := v.screen.Size()
	if w <= 0 || h <= 1 {
		return
	}
	rows := h - 1

	r := rasterize(v.sim, w, rows, v.showTrails)
	for cy := range rows {
		for cx := range w {
			g := r.at(cx, cy)
			v.screen.SetContent(cx, cy, g.Ch, nil, glyphStyle(g))
		}
	}

	st := v.sim.Stats()
	status := fmt.Sprintf(" tick %d  food %d  agents %d  trail %.1f%%  x%d  %s  [%s%s%s] ",
		v.sim.Tick(), st.FoodCollected, st.ActiveAgents, st.TrailCoverage, v.steps, v.cfg.Mode,
		toggleLetter(v.cfg.Toggles.Flocking, 'F'), toggleLetter(v.cfg.Toggles.Trails, 'T'), toggleLetter(v.cfg.Toggles.Signals, 'G'))
	if v.paused {
		status += "PAUSED "
	}
	status += " q quit  space pause  n step  f/t/g toggles  m mode  v trails  r reset"
	drawText(v.screen, 0, rows, w, status, styleStatus)

	v.screen.Show()
}

// glyphStyle picks the terminal style for a rasterized cell.
func glyphStyle(g glyph) tcell.Style {
	switch g.Layer {
	case layerTrail:
		shade := int32(60 + min(g.Level, 1)*195)
		return styleDefault.Foreground(tcell.NewRGBColor(shade, shade*3/4, shade/3))
	case layerStructure:
		return styleStructure
	case layerSignal:
		return styleSignal
	case layerObstacle:
		return styleObstacle
	case layerBase:
		return styleDefault.Foreground(baseColor(g.Slot)).Bold(true)
	case layerFood:
		return styleFood
	case layerAgent:
		if g.Kind == components.KindForager && g.Slot >= 0 {
			return styleDefault.Foreground(baseColor(g.Slot))
		}
		return kindStyles[g.Kind]
	}
	return styleDefault
}

func baseColor(slot int) tcell.Color {
	if slot < 0 {
		return tcell.ColorGray
	}
	return baseColors[slot%len(baseColors)]
}

// toggleLetter renders a toggle as its letter or a dash.
func toggleLetter(on bool, letter rune) string {
	if on {
		return string(letter)
	}
	return "-"
}

// drawText writes s at (x, y), padding the rest of the row with spaces.
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	col := x
	for _, ch := range s {
		if col >= width {
			return
		}
		screen.SetContent(col, y, ch, nil, style)
		col++
	}
	for ; col < width; col++ {
		screen.SetContent(col, y, ' ', nil, style)
	}
}
