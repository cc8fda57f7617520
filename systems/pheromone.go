package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// PheromoneSnap is the level below which a decayed cell is cleared.
const PheromoneSnap = 0.005

// gradientDirs are the 8 unit probe directions used by Gradient, at i*Pi/4.
var gradientDirs = func() [8]r2.Vec {
	var dirs [8]r2.Vec
	for i := range dirs {
		a := float64(i) * math.Pi / 4
		dirs[i] = r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
	}
	return dirs
}()

// PheromoneGrid is a coarse scalar trail field over the world.
// Values stay in [0, 1]; queries outside the world read as 0.
type PheromoneGrid struct {
	Cols, Rows int

	cellSize       float64
	worldW, worldH float64
	values         []float64 // row-major
}

// NewPheromoneGrid creates an empty grid covering worldW x worldH.
func NewPheromoneGrid(worldW, worldH, cellSize float64) *PheromoneGrid {
	cols := max(1, int(math.Ceil(worldW/cellSize)))
	rows := max(1, int(math.Ceil(worldH/cellSize)))
	return &PheromoneGrid{
		Cols:     cols,
		Rows:     rows,
		cellSize: cellSize,
		worldW:   worldW,
		worldH:   worldH,
		values:   make([]float64, cols*rows),
	}
}

// CellSize returns the cell edge in world units.
func (g *PheromoneGrid) CellSize() float64 { return g.cellSize }

// Size returns the grid dimensions in cells.
func (g *PheromoneGrid) Size() (int, int) { return g.Cols, g.Rows }

// Values returns the row-major cell values. Callers must not modify it.
func (g *PheromoneGrid) Values() []float64 { return g.values }

// cellIndex returns the index of the cell containing (x, y).
func (g *PheromoneGrid) cellIndex(x, y float64) (int, bool) {
	if x < 0 || y < 0 || x >= g.worldW || y >= g.worldH || math.IsNaN(x) || math.IsNaN(y) {
		return 0, false
	}
	col := min(int(x/g.cellSize), g.Cols-1)
	row := min(int(y/g.cellSize), g.Rows-1)
	return row*g.Cols + col, true
}

// Deposit adds amount to the cell containing (x, y), saturating at 1.
func (g *PheromoneGrid) Deposit(x, y, amount float64) {
	idx, ok := g.cellIndex(x, y)
	if !ok {
		return
	}
	g.values[idx] = clamp01(g.values[idx] + amount)
}

// Set overwrites the cell containing (x, y).
func (g *PheromoneGrid) Set(x, y, v float64) {
	idx, ok := g.cellIndex(x, y)
	if !ok {
		return
	}
	g.values[idx] = clamp01(v)
}

// Sample returns the value of the cell containing (x, y).
func (g *PheromoneGrid) Sample(x, y float64) float64 {
	idx, ok := g.cellIndex(x, y)
	if !ok {
		return 0
	}
	return g.values[idx]
}

// SampleArea averages the square neighborhood of cells within radius of the
// cell containing (x, y). Cells outside the grid are skipped.
func (g *PheromoneGrid) SampleArea(x, y, radius float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0
	}
	cr := int(math.Ceil(radius / g.cellSize))
	col := int(math.Floor(x / g.cellSize))
	row := int(math.Floor(y / g.cellSize))

	sum := 0.0
	n := 0
	for r := max(0, row-cr); r <= min(g.Rows-1, row+cr); r++ {
		for c := max(0, col-cr); c <= min(g.Cols-1, col+cr); c++ {
			sum += g.values[r*g.Cols+c]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Gradient probes 8 points on a circle of radius around (x, y) and returns
// the direction of the strongest probe scaled by its value. The first probe
// wins ties. Returns zero when the strongest probe is below threshold.
func (g *PheromoneGrid) Gradient(x, y, radius, threshold float64) r2.Vec {
	best := 0.0
	var bestDir r2.Vec
	for _, dir := range gradientDirs {
		v := g.Sample(x+dir.X*radius, y+dir.Y*radius)
		if v > best {
			best = v
			bestDir = dir
		}
	}
	if best < threshold {
		return r2.Vec{}
	}
	return r2.Scale(best, bestDir)
}

// DecayAll multiplies every cell by factor, clearing cells that fall below
// PheromoneSnap.
func (g *PheromoneGrid) DecayAll(factor float64) {
	factor = clamp01(factor)
	for i, v := range g.values {
		v *= factor
		if v < PheromoneSnap {
			v = 0
		}
		g.values[i] = v
	}
}

// Coverage returns the fraction of cells whose value exceeds threshold.
func (g *PheromoneGrid) Coverage(threshold float64) float64 {
	n := 0
	for _, v := range g.values {
		if v > threshold {
			n++
		}
	}
	return float64(n) / float64(len(g.values))
}

// Reset clears every cell.
func (g *PheromoneGrid) Reset() {
	clear(g.values)
}
