package systems

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/emergent/components"
	"github.com/pthm-cable/emergent/config"
)

func TestSeek(t *testing.T) {
	f := Seek(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 3, Y: 4}, 2)
	if math.Abs(f.X-1.2) > 1e-12 || math.Abs(f.Y-1.6) > 1e-12 {
		t.Errorf("expected (1.2, 1.6), got %v", f)
	}
	if f := Seek(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1, Y: 1}, 2); f != (r2.Vec{}) {
		t.Errorf("expected zero force at target, got %v", f)
	}
}

func TestWanderDeterministic(t *testing.T) {
	h1, h2 := 1.0, 1.0
	rngA := rand.New(rand.NewPCG(7, 7))
	rngB := rand.New(rand.NewPCG(7, 7))

	for range 100 {
		f1 := Wander(&h1, rngA, 0.6, 0.3)
		f2 := Wander(&h2, rngB, 0.6, 0.3)
		if f1 != f2 {
			t.Fatalf("same seed diverged: %v vs %v", f1, f2)
		}
		if n := math.Hypot(f1.X, f1.Y); math.Abs(n-0.3) > 1e-9 {
			t.Fatalf("expected wander magnitude 0.3, got %f", n)
		}
	}
}

func TestBoundary(t *testing.T) {
	tests := []struct {
		name  string
		pos   r2.Vec
		wantX float64
		wantY float64
	}{
		{"center", r2.Vec{X: 500, Y: 300}, 0, 0},
		{"left edge", r2.Vec{X: 0, Y: 300}, 2, 0},
		{"halfway into right margin", r2.Vec{X: 980, Y: 300}, -1, 0},
		{"top-left corner", r2.Vec{X: 30, Y: 10}, 0.5, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Boundary(tt.pos, 1000, 600, 40, 2)
			if math.Abs(f.X-tt.wantX) > 1e-9 || math.Abs(f.Y-tt.wantY) > 1e-9 {
				t.Errorf("got %v, want (%f, %f)", f, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestAvoidObstacles(t *testing.T) {
	obstacles := []Obstacle{{X: 100, Y: 100, Shape: ShapeCircle, Radius: 20}}

	// Outside range
	if f := AvoidObstacles(r2.Vec{X: 200, Y: 100}, obstacles, 30, 2); f != (r2.Vec{}) {
		t.Errorf("expected no force out of range, got %v", f)
	}

	// Half way into range: 15 from the surface
	f := AvoidObstacles(r2.Vec{X: 135, Y: 100}, obstacles, 30, 2)
	if math.Abs(f.X-1) > 1e-9 || math.Abs(f.Y) > 1e-9 {
		t.Errorf("expected (1, 0), got %v", f)
	}

	// Inside: full weight
	f = AvoidObstacles(r2.Vec{X: 100, Y: 90}, obstacles, 30, 2)
	if math.Abs(f.X) > 1e-9 || math.Abs(f.Y+2) > 1e-9 {
		t.Errorf("expected (0, -2), got %v", f)
	}
}

func TestSeparationAndFlock(t *testing.T) {
	neighbors := []Neighbor{
		{DX: 5, DY: 0, DistSq: 25, VX: 0, VY: 2},
		{DX: -20, DY: 0, DistSq: 400, VX: 0, VY: 2},
	}

	sep := Separation(neighbors, 10, 1)
	if sep.X >= 0 || sep.Y != 0 {
		t.Errorf("expected push away from close neighbor on -X, got %v", sep)
	}

	p := FlockParams{
		AlignRadius: 30, CohesionRadius: 30, SeparationRadius: 10,
		AlignWeight: 1, CohesionWeight: 0, SeparationWeight: 0,
	}
	f := Flock(r2.Vec{}, neighbors, p)
	if math.Abs(f.X) > 1e-9 || math.Abs(f.Y-2) > 1e-9 {
		t.Errorf("expected pure alignment (0, 2), got %v", f)
	}

	if f := Flock(r2.Vec{X: 1}, nil, p); f != (r2.Vec{}) {
		t.Errorf("expected zero force without neighbors, got %v", f)
	}
}

func TestSignalPull(t *testing.T) {
	signals := []Signal{{X: 0, Y: 0, Radius: 50, Opacity: 0.5}}

	// On the ring
	f := SignalPull(r2.Vec{X: 55, Y: 0}, signals, 20, 2)
	if math.Abs(f.X+1) > 1e-9 || math.Abs(f.Y) > 1e-9 {
		t.Errorf("expected (-1, 0), got %v", f)
	}
	// Inside the ring, outside the band
	if f := SignalPull(r2.Vec{X: 10, Y: 0}, signals, 20, 2); f != (r2.Vec{}) {
		t.Errorf("expected no pull away from the ring, got %v", f)
	}
}

func TestFrontierBias(t *testing.T) {
	explored := map[components.Cell]struct{}{}
	pos := r2.Vec{X: 100, Y: 100}

	// Everything unexplored: probes cancel out
	if f := FrontierBias(pos, explored, 40, 1000, 1000, 1); r2.Norm(f) > 1e-9 {
		t.Errorf("expected balanced probes to cancel, got %v", f)
	}

	// Explore everything except the east bucket
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			explored[BucketOf(pos.X+float64(dx)*40, pos.Y+float64(dy)*40, 40)] = struct{}{}
		}
	}
	delete(explored, BucketOf(140, 100, 40))
	f := FrontierBias(pos, explored, 40, 1000, 1000, 1)
	if math.Abs(f.X-1) > 1e-9 || math.Abs(f.Y) > 1e-9 {
		t.Errorf("expected (1, 0) toward the unexplored bucket, got %v", f)
	}
}

func TestSpatialGridQuery(t *testing.T) {
	world := ecs.NewWorld()
	mapper := ecs.NewMap2[components.Position, components.Velocity](world)
	posMap := ecs.NewMap1[components.Position](world)
	velMap := ecs.NewMap1[components.Velocity](world)

	grid := NewSpatialGrid(500, 500, 40)
	points := []components.Position{{X: 100, Y: 100}, {X: 110, Y: 100}, {X: 100, Y: 145}, {X: 400, Y: 400}}
	var entities []ecs.Entity
	for i := range points {
		e := mapper.NewEntity(&points[i], &components.Velocity{X: float64(i)})
		grid.Insert(e, points[i].X, points[i].Y)
		entities = append(entities, e)
	}

	got := grid.QueryRadiusInto(nil, 100, 100, 50, entities[0], posMap, velMap)
	if len(got) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(got))
	}
	for _, n := range got {
		if n.E == entities[0] || n.E == entities[3] {
			t.Errorf("unexpected neighbor %v", n.E)
		}
		if n.E == entities[1] && (n.DX != 10 || n.DY != 0 || n.DistSq != 100 || n.VX != 1) {
			t.Errorf("bad neighbor data: %+v", n)
		}
	}

	// Positions outside the world clamp to edge cells
	grid.Clear()
	grid.Insert(entities[3], 9000, 9000)
	if got := grid.QueryRadiusInto(nil, 400, 400, 10, ecs.Entity{}, posMap, velMap); len(got) != 1 {
		t.Errorf("expected clamped entity to be found via its live position, got %d", len(got))
	}
}

func TestLayoutPointDeterministic(t *testing.T) {
	cfg := config.Default().Layout
	l1 := NewLayout(99, cfg)
	l2 := NewLayout(99, cfg)
	rngA := rand.New(rand.NewPCG(1, 1))
	rngB := rand.New(rand.NewPCG(1, 1))

	accept := func(x, y float64) bool { return x > 300 }
	for range 20 {
		x1, y1 := l1.Point(rngA, 1000, 700, accept)
		x2, y2 := l2.Point(rngB, 1000, 700, accept)
		if x1 != x2 || y1 != y2 {
			t.Fatalf("same seed gave different points: (%f,%f) vs (%f,%f)", x1, y1, x2, y2)
		}
		if x1 < cfg.Margin || x1 > 1000-cfg.Margin || y1 < cfg.Margin || y1 > 700-cfg.Margin {
			t.Fatalf("point outside margin: (%f, %f)", x1, y1)
		}
	}
}
