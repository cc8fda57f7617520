// Package systems provides the simulation building blocks: the pheromone
// field, environment entities, steering forces and the neighbor index.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/emergent/components"
)

// Neighbor holds a nearby agent with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float64 // Delta from query origin to the neighbor
	DistSq float64
	VX, VY float64 // Neighbor velocity at query time
}

// SpatialGrid provides bucketed neighbor lookups over a bounded world.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]ecs.Entity
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], e)
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
const MaxQueryResults = 64

// QueryRadiusInto appends agents within radius of (x, y) to dst, reading
// their current positions and velocities through the maps. Reuse dst across
// calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude ecs.Entity,
	posMap *ecs.Map1[components.Position], velMap *ecs.Map1[components.Velocity]) []Neighbor {

	cellRadius := int(math.Ceil(radius/g.cellSize)) + 1
	centerCol := g.clampCol(int(x / g.cellSize))
	centerRow := g.clampRow(int(y / g.cellSize))
	radiusSq := radius * radius

	for row := max(0, centerRow-cellRadius); row <= min(g.rows-1, centerRow+cellRadius); row++ {
		for col := max(0, centerCol-cellRadius); col <= min(g.cols-1, centerCol+cellRadius); col++ {
			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				dx, dy := pos.X-x, pos.Y-y
				distSq := dx*dx + dy*dy
				if distSq > radiusSq {
					continue
				}
				vel := velMap.Get(e)
				dst = append(dst, Neighbor{E: e, DX: dx, DY: dy, DistSq: distSq, VX: vel.X, VY: vel.Y})
				if len(dst) >= MaxQueryResults {
					return dst
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat index for a world position, clamped to the grid.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	return g.clampRow(int(y/g.cellSize))*g.cols + g.clampCol(int(x/g.cellSize))
}

func (g *SpatialGrid) clampCol(col int) int {
	return max(0, min(g.cols-1, col))
}

func (g *SpatialGrid) clampRow(row int) int {
	return max(0, min(g.rows-1, row))
}
