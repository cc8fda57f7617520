package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/emergent/config"
)

// Food is a regenerating food source.
type Food struct {
	X, Y      float64
	Amount    float64
	MaxAmount float64
	RegenRate float64 // Units per tick
	Radius    float64
}

// Regenerate moves Amount toward MaxAmount by RegenRate*dt.
func (f *Food) Regenerate(dt float64) {
	if f.Amount < f.MaxAmount {
		f.Amount = math.Min(f.MaxAmount, f.Amount+f.RegenRate*dt)
	}
}

// Take removes up to n units and returns the amount removed.
func (f *Food) Take(n float64) float64 {
	taken := math.Min(n, f.Amount)
	if taken <= 0 {
		return 0
	}
	f.Amount -= taken
	return taken
}

// Shape is an obstacle's geometry.
type Shape uint8

const (
	ShapeCircle Shape = iota
	ShapeRect
)

// Obstacle is an immutable circle or axis-aligned rectangle centered on X, Y.
type Obstacle struct {
	X, Y   float64
	Shape  Shape
	Radius float64 // ShapeCircle
	W, H   float64 // ShapeRect
}

// Distance returns the signed distance from (x, y) to the obstacle surface
// (negative inside) and the outward unit normal at the nearest surface point.
func (o Obstacle) Distance(x, y float64) (float64, r2.Vec) {
	if o.Shape == ShapeCircle {
		d := r2.Vec{X: x - o.X, Y: y - o.Y}
		n := r2.Norm(d)
		if n == 0 {
			return -o.Radius, r2.Vec{X: 1}
		}
		return n - o.Radius, r2.Scale(1/n, d)
	}

	hw, hh := o.W/2, o.H/2
	qx := math.Abs(x-o.X) - hw
	qy := math.Abs(y-o.Y) - hh
	if qx > 0 || qy > 0 {
		closest := r2.Vec{
			X: clampFloat(x, o.X-hw, o.X+hw),
			Y: clampFloat(y, o.Y-hh, o.Y+hh),
		}
		d := r2.Sub(r2.Vec{X: x, Y: y}, closest)
		n := r2.Norm(d)
		return n, r2.Scale(1/n, d)
	}

	// Inside: push out through the nearest face
	if qx > qy {
		return qx, r2.Vec{X: sign(x - o.X)}
	}
	return qy, r2.Vec{Y: sign(y - o.Y)}
}

// Contains reports whether (x, y) lies inside the obstacle.
func (o Obstacle) Contains(x, y float64) bool {
	d, _ := o.Distance(x, y)
	return d < 0
}

// Extent returns the radius of a circle enclosing the obstacle.
func (o Obstacle) Extent() float64 {
	if o.Shape == ShapeCircle {
		return o.Radius
	}
	return math.Hypot(o.W, o.H) / 2
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// Base is a colony home that foragers return food to.
type Base struct {
	X, Y   float64
	Radius float64
	Slot   int // Identity/color index
}

// Structure is a builder-placed marker that fades after it grows old.
type Structure struct {
	X, Y    float64
	Age     float64
	Opacity float64
}

// Advance ages the structure and fades it once Age exceeds maxAge.
// Returns false when the structure should be removed.
func (s *Structure) Advance(dt, maxAge, fade float64) bool {
	s.Age += dt
	if s.Age > maxAge {
		s.Opacity -= fade * dt
	}
	return s.Opacity > 0
}

// Signal is an expanding ring emitted by a scout that spotted food.
type Signal struct {
	X, Y      float64
	Radius    float64
	Opacity   float64
	MaxRadius float64
	Speed     float64
	FadeRate  float64
}

// NewSignal creates a signal at (x, y) with parameters from cfg.
func NewSignal(x, y float64, cfg config.SignalConfig) Signal {
	return Signal{
		X:         x,
		Y:         y,
		Opacity:   1,
		MaxRadius: cfg.MaxRadius,
		Speed:     cfg.Speed,
		FadeRate:  cfg.FadeRate,
	}
}

// Advance grows the ring and fades it.
func (s *Signal) Advance(dt float64) {
	s.Radius += s.Speed * dt
	s.Opacity -= s.FadeRate * dt
}

// Expired reports whether the signal should be removed.
func (s *Signal) Expired() bool {
	return s.Radius > s.MaxRadius || s.Opacity <= 0
}

// Environment holds the non-agent world state.
type Environment struct {
	Foods      []Food
	Obstacles  []Obstacle
	Bases      []Base
	Structures []Structure
	Signals    []Signal
}

// NearestFood returns the index of the closest food with Amount > 0 within
// radius of (x, y), or -1. Ties resolve to the earlier entry.
func (e *Environment) NearestFood(x, y, radius float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i := range e.Foods {
		f := &e.Foods[i]
		if f.Amount <= 0 {
			continue
		}
		d := distance(x, y, f.X, f.Y)
		if d <= radius && d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// StructuresWithin counts structures within radius of (x, y).
func (e *Environment) StructuresWithin(x, y, radius float64) int {
	n := 0
	rSq := radius * radius
	for i := range e.Structures {
		dx := e.Structures[i].X - x
		dy := e.Structures[i].Y - y
		if dx*dx+dy*dy < rSq {
			n++
		}
	}
	return n
}

// AdvanceSignals grows and fades every signal, dropping expired ones.
func (e *Environment) AdvanceSignals(dt float64) {
	kept := e.Signals[:0]
	for _, s := range e.Signals {
		s.Advance(dt)
		if !s.Expired() {
			kept = append(kept, s)
		}
	}
	clear(e.Signals[len(kept):])
	e.Signals = kept
}

// RegenerateFood regrows every food source.
func (e *Environment) RegenerateFood(dt float64) {
	for i := range e.Foods {
		e.Foods[i].Regenerate(dt)
	}
}

// AgeStructures ages every structure, dropping fully faded ones.
func (e *Environment) AgeStructures(dt, maxAge, fade float64) {
	kept := e.Structures[:0]
	for _, s := range e.Structures {
		if s.Advance(dt, maxAge, fade) {
			kept = append(kept, s)
		}
	}
	clear(e.Structures[len(kept):])
	e.Structures = kept
}

// Crop drops food, obstacles, structures and signals whose centre lies
// outside [0,w)x[0,h). Bases are left to the caller.
func (e *Environment) Crop(w, h float64) {
	inside := func(x, y float64) bool { return x >= 0 && y >= 0 && x < w && y < h }
	e.Foods = keepWhere(e.Foods, func(f *Food) bool { return inside(f.X, f.Y) })
	e.Obstacles = keepWhere(e.Obstacles, func(o *Obstacle) bool { return inside(o.X, o.Y) })
	e.Structures = keepWhere(e.Structures, func(s *Structure) bool { return inside(s.X, s.Y) })
	e.Signals = keepWhere(e.Signals, func(s *Signal) bool { return inside(s.X, s.Y) })
}

// keepWhere filters items in place, preserving order.
func keepWhere[T any](items []T, keep func(*T) bool) []T {
	kept := items[:0]
	for i := range items {
		if keep(&items[i]) {
			kept = append(kept, items[i])
		}
	}
	clear(items[len(kept):])
	return kept
}

// TotalFood returns the sum of food remaining across all sources.
func (e *Environment) TotalFood() float64 {
	total := 0.0
	for i := range e.Foods {
		total += e.Foods[i].Amount
	}
	return total
}

// InsideObstacle reports whether (x, y) lies inside any obstacle.
func (e *Environment) InsideObstacle(x, y float64) bool {
	for i := range e.Obstacles {
		if e.Obstacles[i].Contains(x, y) {
			return true
		}
	}
	return false
}

// RandomFood creates a food source at (x, y) with randomized parameters.
func RandomFood(rng *rand.Rand, x, y float64, cfg config.FoodConfig) Food {
	amount := Uniform(rng, cfg.AmountMin, cfg.AmountMax)
	return Food{
		X:         x,
		Y:         y,
		Amount:    amount,
		MaxAmount: amount,
		RegenRate: Uniform(rng, cfg.RegenMin, cfg.RegenMax),
		Radius:    Uniform(rng, cfg.RadiusMin, cfg.RadiusMax),
	}
}

// RandomObstacle creates a circle or rectangle obstacle centered on (x, y).
func RandomObstacle(rng *rand.Rand, x, y float64, cfg config.ObstacleConfig) Obstacle {
	if rng.Float64() < cfg.CircleChance {
		return Obstacle{X: x, Y: y, Shape: ShapeCircle, Radius: Uniform(rng, cfg.RadiusMin, cfg.RadiusMax)}
	}
	return Obstacle{
		X:     x,
		Y:     y,
		Shape: ShapeRect,
		W:     Uniform(rng, cfg.SideMin, cfg.SideMax),
		H:     Uniform(rng, cfg.SideMin, cfg.SideMax),
	}
}

// Uniform returns a value in [lo, hi), or lo when the range is empty.
func Uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
