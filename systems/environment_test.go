package systems

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/emergent/config"
)

func TestFoodTakeAndRegenerate(t *testing.T) {
	f := Food{Amount: 1.5, MaxAmount: 2, RegenRate: 0.1}

	if got := f.Take(1); got != 1 {
		t.Errorf("expected to take 1, got %f", got)
	}
	if got := f.Take(1); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected to take remaining 0.5, got %f", got)
	}
	if got := f.Take(1); got != 0 {
		t.Errorf("expected nothing from empty source, got %f", got)
	}

	for range 100 {
		f.Regenerate(1)
		if f.Amount > f.MaxAmount {
			t.Fatalf("amount %f exceeded max %f", f.Amount, f.MaxAmount)
		}
	}
	if f.Amount != f.MaxAmount {
		t.Errorf("expected full regeneration to %f, got %f", f.MaxAmount, f.Amount)
	}
}

func TestNearestFood(t *testing.T) {
	env := &Environment{Foods: []Food{
		{X: 50, Y: 0, Amount: 5},
		{X: 0, Y: 50, Amount: 5},  // ties with index 0
		{X: 10, Y: 0, Amount: 0},  // depleted
		{X: 200, Y: 0, Amount: 5}, // out of range
	}}

	if got := env.NearestFood(0, 0, 60); got != 0 {
		t.Errorf("expected tie to resolve to index 0, got %d", got)
	}
	if got := env.NearestFood(0, 0, 40); got != -1 {
		t.Errorf("expected no food within 40, got %d", got)
	}
	if got := env.NearestFood(190, 0, 60); got != 3 {
		t.Errorf("expected index 3, got %d", got)
	}
}

func TestObstacleDistance(t *testing.T) {
	tests := []struct {
		name     string
		o        Obstacle
		x, y     float64
		wantDist float64
		wantNX   float64
		wantNY   float64
	}{
		{"circle outside", Obstacle{X: 0, Y: 0, Shape: ShapeCircle, Radius: 10}, 20, 0, 10, 1, 0},
		{"circle inside", Obstacle{X: 0, Y: 0, Shape: ShapeCircle, Radius: 10}, 0, -4, -6, 0, -1},
		{"rect right", Obstacle{X: 0, Y: 0, Shape: ShapeRect, W: 20, H: 10}, 15, 0, 5, 1, 0},
		{"rect above", Obstacle{X: 0, Y: 0, Shape: ShapeRect, W: 20, H: 10}, 2, -8, 3, 0, -1},
		{"rect inside", Obstacle{X: 0, Y: 0, Shape: ShapeRect, W: 20, H: 10}, 8, 1, -2, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, n := tt.o.Distance(tt.x, tt.y)
			if math.Abs(d-tt.wantDist) > 1e-9 {
				t.Errorf("distance: got %f, want %f", d, tt.wantDist)
			}
			if math.Abs(n.X-tt.wantNX) > 1e-9 || math.Abs(n.Y-tt.wantNY) > 1e-9 {
				t.Errorf("normal: got %v, want (%f, %f)", n, tt.wantNX, tt.wantNY)
			}
		})
	}
}

func TestSignalLifecycle(t *testing.T) {
	env := &Environment{Signals: []Signal{
		NewSignal(0, 0, config.SignalConfig{MaxRadius: 10, Speed: 1, FadeRate: 0.01}),
		NewSignal(0, 0, config.SignalConfig{MaxRadius: 1000, Speed: 1, FadeRate: 0.25}),
	}}

	prevRadius := 0.0
	prevOpacity := 1.0
	for tick := 1; tick <= 4; tick++ {
		env.AdvanceSignals(1)
		for _, s := range env.Signals {
			if s.Radius < prevRadius || s.Opacity > prevOpacity {
				t.Fatalf("tick %d: radius or opacity moved the wrong way: %+v", tick, s)
			}
		}
		prevRadius = float64(tick)
		prevOpacity = 1 - 0.01*float64(tick)
	}
	// Second signal fades to zero on tick 4 and is dropped that same tick
	if len(env.Signals) != 1 {
		t.Fatalf("expected 1 signal after 4 ticks, got %d", len(env.Signals))
	}

	for range 6 {
		env.AdvanceSignals(1)
	}
	// Radius 10 is still within max; 11 is not
	if len(env.Signals) != 1 {
		t.Fatalf("expected signal at radius 10 to survive, got %d", len(env.Signals))
	}
	env.AdvanceSignals(1)
	if len(env.Signals) != 0 {
		t.Errorf("expected signal past max radius to be removed, got %d", len(env.Signals))
	}
}

func TestStructureAging(t *testing.T) {
	env := &Environment{Structures: []Structure{{X: 1, Y: 1, Opacity: 1}}}

	for range 10 {
		env.AgeStructures(1, 10, 0.5)
	}
	if len(env.Structures) != 1 || env.Structures[0].Opacity != 1 {
		t.Fatalf("expected untouched structure before max age, got %+v", env.Structures)
	}

	env.AgeStructures(1, 10, 0.5)
	if got := env.Structures[0].Opacity; got != 0.5 {
		t.Errorf("expected opacity 0.5 after first fade tick, got %f", got)
	}
	env.AgeStructures(1, 10, 0.5)
	if len(env.Structures) != 0 {
		t.Errorf("expected faded structure removed, got %d", len(env.Structures))
	}
}

func TestStructuresWithin(t *testing.T) {
	env := &Environment{Structures: []Structure{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 29}, {X: 30, Y: 0},
	}}
	if got := env.StructuresWithin(0, 0, 30); got != 3 {
		t.Errorf("expected 3 structures within 30, got %d", got)
	}
}

func TestRandomSpawners(t *testing.T) {
	cfg := config.Default()
	rng := rand.New(rand.NewPCG(1, 2))

	for range 50 {
		f := RandomFood(rng, 10, 20, cfg.Food)
		if f.Amount < cfg.Food.AmountMin || f.Amount >= cfg.Food.AmountMax || f.Amount != f.MaxAmount {
			t.Fatalf("food amount out of range: %+v", f)
		}
		if f.Radius < cfg.Food.RadiusMin || f.Radius >= cfg.Food.RadiusMax {
			t.Fatalf("food radius out of range: %+v", f)
		}

		o := RandomObstacle(rng, 10, 20, cfg.Obstacle)
		switch o.Shape {
		case ShapeCircle:
			if o.Radius < cfg.Obstacle.RadiusMin || o.Radius >= cfg.Obstacle.RadiusMax {
				t.Fatalf("circle radius out of range: %+v", o)
			}
		case ShapeRect:
			if o.W < cfg.Obstacle.SideMin || o.H < cfg.Obstacle.SideMin {
				t.Fatalf("rect too small: %+v", o)
			}
		}
		if !o.Contains(10, 20) {
			t.Fatalf("obstacle does not contain its own center: %+v", o)
		}
	}
}

func TestEnvironmentCrop(t *testing.T) {
	e := &Environment{
		Foods:      []Food{{X: 10, Y: 10}, {X: 830, Y: 10}, {X: 10, Y: 720}},
		Obstacles:  []Obstacle{{X: 799.5, Y: 5}, {X: 800, Y: 5}},
		Structures: []Structure{{X: -1, Y: 5}, {X: 5, Y: 5}},
		Signals:    []Signal{{X: 400, Y: 800}},
	}
	e.Crop(800, 720)

	if len(e.Foods) != 1 || e.Foods[0].X != 10 {
		t.Errorf("foods after crop: %+v", e.Foods)
	}
	if len(e.Obstacles) != 1 || e.Obstacles[0].X != 799.5 {
		t.Errorf("obstacles after crop: %+v", e.Obstacles)
	}
	if len(e.Structures) != 1 || e.Structures[0].X != 5 {
		t.Errorf("structures after crop: %+v", e.Structures)
	}
	if len(e.Signals) != 0 {
		t.Errorf("signals after crop: %+v", e.Signals)
	}
}
