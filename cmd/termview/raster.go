package main

import (
	"github.com/pthm-cable/emergent/components"
	"github.com/pthm-cable/emergent/sim"
)

// layer orders what a terminal cell shows; higher layers win.
type layer uint8

const (
	layerEmpty layer = iota
	layerTrail
	layerStructure
	layerSignal
	layerObstacle
	layerBase
	layerFood
	layerAgent
)

// glyph is one terminal cell of the rasterized world.
type glyph struct {
	Ch    rune
	Layer layer
	Kind  components.Kind // layerAgent only
	Slot  int             // Base slot for bases and foragers, else -1
	Level float64         // Trail strength for layerTrail
}

// trailRunes shade increasing pheromone strength.
var trailRunes = []rune{'.', ':', '+', '*'}

// trailLevels are the lower bounds for each trail rune.
var trailLevels = []float64{0.02, 0.1, 0.3, 0.7}

// kindRunes are agent glyphs; carrying foragers use the upper case.
var kindRunes = [components.NumKinds]rune{
	components.KindForager: 'f',
	components.KindBuilder: 'b',
	components.KindScout:   's',
}

// raster maps the world onto a cols x rows character grid.
type raster struct {
	cols, rows int
	sx, sy     float64 // World units per cell
	cells      []glyph
}

func newRaster(cols, rows int, worldW, worldH float64) *raster {
	cols, rows = max(cols, 1), max(rows, 1)
	return &raster{
		cols:  cols,
		rows:  rows,
		sx:    worldW / float64(cols),
		sy:    worldH / float64(rows),
		cells: make([]glyph, cols*rows),
	}
}

// put writes g at a world position unless a higher layer holds the cell.
func (r *raster) put(x, y float64, g glyph) {
	c, ok := r.cell(x, y)
	if !ok || r.cells[c].Layer > g.Layer {
		return
	}
	r.cells[c] = g
}

func (r *raster) cell(x, y float64) (int, bool) {
	cx := int(x / r.sx)
	cy := int(y / r.sy)
	if x < 0 || y < 0 || cx >= r.cols || cy >= r.rows {
		return 0, false
	}
	return cy*r.cols + cx, true
}

// center returns the world position at the middle of cell (cx, cy).
func (r *raster) center(cx, cy int) (float64, float64) {
	return (float64(cx) + 0.5) * r.sx, (float64(cy) + 0.5) * r.sy
}

// at returns the glyph at a grid cell.
func (r *raster) at(cx, cy int) glyph {
	return r.cells[cy*r.cols+cx]
}

// rasterize draws the simulation state into a fresh raster.
func rasterize(s *sim.Simulation, cols, rows int, showTrails bool) *raster {
	r := newRaster(cols, rows, s.Width(), s.Height())
	for i := range r.cells {
		r.cells[i] = glyph{Ch: ' ', Slot: -1}
	}
	env := s.Environment()

	if showTrails {
		grid := s.Grid()
		for cy := range r.rows {
			for cx := range r.cols {
				x, y := r.center(cx, cy)
				v := grid.SampleArea(x, y, max(r.sx, r.sy)/2)
				ch, ok := trailRune(v)
				if ok {
					r.put(x, y, glyph{Ch: ch, Layer: layerTrail, Slot: -1, Level: v})
				}
			}
		}
	}

	for _, st := range env.Structures {
		r.put(st.X, st.Y, glyph{Ch: '^', Layer: layerStructure, Slot: -1})
	}

	for _, sg := range env.Signals {
		r.put(sg.X, sg.Y, glyph{Ch: 'o', Layer: layerSignal, Slot: -1})
	}

	for cy := range r.rows {
		for cx := range r.cols {
			x, y := r.center(cx, cy)
			if env.InsideObstacle(x, y) {
				r.put(x, y, glyph{Ch: '#', Layer: layerObstacle, Slot: -1})
			}
		}
	}
	// Obstacles smaller than a cell still show up
	for _, o := range env.Obstacles {
		r.put(o.X, o.Y, glyph{Ch: '#', Layer: layerObstacle, Slot: -1})
	}

	for _, b := range env.Bases {
		r.fillDisc(b.X, b.Y, b.Radius, glyph{Ch: 'H', Layer: layerBase, Slot: b.Slot})
	}

	for _, f := range env.Foods {
		ch := '%'
		if f.Amount <= 0 {
			ch = ','
		}
		r.put(f.X, f.Y, glyph{Ch: ch, Layer: layerFood, Slot: -1})
	}

	s.EachAgent(func(a sim.AgentView) {
		ch := kindRunes[a.Kind]
		if a.Carrying {
			ch = 'F'
		}
		r.put(a.X, a.Y, glyph{Ch: ch, Layer: layerAgent, Kind: a.Kind, Slot: a.BaseSlot})
	})

	return r
}

// fillDisc writes g to every cell whose center lies within radius of (x, y),
// plus the cell holding the center itself.
func (r *raster) fillDisc(x, y, radius float64, g glyph) {
	r.put(x, y, g)
	cx0 := max(int((x-radius)/r.sx), 0)
	cy0 := max(int((y-radius)/r.sy), 0)
	cx1 := min(int((x+radius)/r.sx), r.cols-1)
	cy1 := min(int((y+radius)/r.sy), r.rows-1)
	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			px, py := r.center(cx, cy)
			dx, dy := px-x, py-y
			if dx*dx+dy*dy <= radius*radius {
				r.put(px, py, g)
			}
		}
	}
}

// trailRune picks the shading rune for a pheromone level.
func trailRune(v float64) (rune, bool) {
	for i := len(trailLevels) - 1; i >= 0; i-- {
		if v >= trailLevels[i] {
			return trailRunes[i], true
		}
	}
	return 0, false
}
