package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestPheromoneGridCreation(t *testing.T) {
	g := NewPheromoneGrid(1000, 720, 8)

	cols, rows := g.Size()
	if cols != 125 || rows != 90 {
		t.Errorf("expected grid 125x90, got %dx%d", cols, rows)
	}

	// Non-multiple world sizes round up
	g = NewPheromoneGrid(801, 9, 8)
	cols, rows = g.Size()
	if cols != 101 || rows != 2 {
		t.Errorf("expected grid 101x2, got %dx%d", cols, rows)
	}
	for _, v := range g.Values() {
		if v != 0 {
			t.Fatalf("expected zeroed grid, found %f", v)
		}
	}
}

func TestPheromoneDepositSaturates(t *testing.T) {
	g := NewPheromoneGrid(100, 100, 10)

	for range 30 {
		g.Deposit(55, 55, 0.08)
	}
	if got := g.Sample(55, 55); got != 1 {
		t.Errorf("expected saturation at 1, got %f", got)
	}
	// Same cell, different point
	if got := g.Sample(51, 59); got != 1 {
		t.Errorf("expected same-cell sample 1, got %f", got)
	}
	if got := g.Sample(45, 55); got != 0 {
		t.Errorf("expected neighbor cell untouched, got %f", got)
	}
}

func TestPheromoneOutOfBounds(t *testing.T) {
	g := NewPheromoneGrid(100, 100, 10)

	tests := []struct {
		name string
		x, y float64
	}{
		{"negative x", -1, 50},
		{"negative y", 50, -0.1},
		{"past width", 100, 50},
		{"past height", 50, 250},
		{"nan", math.NaN(), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.Deposit(tt.x, tt.y, 0.5)
			if got := g.Sample(tt.x, tt.y); got != 0 {
				t.Errorf("expected 0 outside grid, got %f", got)
			}
		})
	}

	for _, v := range g.Values() {
		if v != 0 {
			t.Fatalf("out-of-bounds deposit leaked into grid: %f", v)
		}
	}
}

func TestPheromoneDecay(t *testing.T) {
	g := NewPheromoneGrid(100, 100, 10)
	g.Set(5, 5, 0.8)
	g.Set(15, 5, 0.0051)
	g.Set(25, 5, 0.006)

	g.DecayAll(0.9)

	if got := g.Sample(5, 5); math.Abs(got-0.72) > 1e-12 {
		t.Errorf("expected 0.72 after decay, got %f", got)
	}
	// 0.0051*0.9 falls below the snap level
	if got := g.Sample(15, 5); got != 0 {
		t.Errorf("expected snapped cell 0, got %f", got)
	}
	// 0.006*0.9 = 0.0054 stays
	if got := g.Sample(25, 5); got == 0 {
		t.Error("expected cell above snap level to survive")
	}

	// Monotone: repeated decay never increases any cell and ends at zero
	prev := append([]float64(nil), g.Values()...)
	for range 500 {
		g.DecayAll(0.9)
		for i, v := range g.Values() {
			if v > prev[i] || v < 0 {
				t.Fatalf("cell %d went from %f to %f", i, prev[i], v)
			}
			prev[i] = v
		}
	}
	for _, v := range g.Values() {
		if v != 0 {
			t.Fatalf("expected fully decayed grid, found %f", v)
		}
	}
}

func TestPheromoneSampleArea(t *testing.T) {
	g := NewPheromoneGrid(100, 100, 10)
	g.Set(55, 55, 0.9)

	// radius 10 -> 3x3 cells
	if got := g.SampleArea(55, 55, 10); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected 0.9/9 = 0.1, got %f", got)
	}

	// Corner: only 2x2 cells in range
	g.Reset()
	g.Set(5, 5, 0.8)
	if got := g.SampleArea(5, 5, 10); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected 0.8/4 = 0.2, got %f", got)
	}

	// Entirely outside
	if got := g.SampleArea(-500, -500, 10); got != 0 {
		t.Errorf("expected 0 far outside, got %f", got)
	}
}

func TestPheromoneGradient(t *testing.T) {
	g := NewPheromoneGrid(200, 200, 10)

	// Empty field
	if got := g.Gradient(100, 100, 15, 0.01); got != (r2.Vec{}) {
		t.Errorf("expected zero gradient on empty field, got %v", got)
	}

	// Strongest probe east
	g.Set(115, 100, 0.6)
	g.Set(100, 115, 0.3)
	got := g.Gradient(100, 100, 15, 0.01)
	if math.Abs(got.X-0.6) > 1e-9 || math.Abs(got.Y) > 1e-9 {
		t.Errorf("expected (0.6, 0), got %v", got)
	}

	// Equal probes: first direction wins
	g.Reset()
	g.Set(100, 115, 0.5) // angle Pi/2
	g.Set(85, 100, 0.5)  // angle Pi
	got = g.Gradient(100, 100, 15, 0.01)
	if math.Abs(got.X) > 1e-9 || math.Abs(got.Y-0.5) > 1e-9 {
		t.Errorf("expected tie to resolve to (0, 0.5), got %v", got)
	}

	// Below threshold
	g.Reset()
	g.Set(115, 100, 0.009)
	if got := g.Gradient(100, 100, 15, 0.01); got != (r2.Vec{}) {
		t.Errorf("expected zero below threshold, got %v", got)
	}
}

func TestPheromoneCoverage(t *testing.T) {
	g := NewPheromoneGrid(100, 100, 10)
	for i := range 25 {
		g.Set(float64(i%10)*10+1, float64(i/10)*10+1, 0.5)
	}
	if got := g.Coverage(0.05); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("expected coverage 0.25, got %f", got)
	}
	g.Reset()
	if got := g.Coverage(0.05); got != 0 {
		t.Errorf("expected coverage 0 after reset, got %f", got)
	}
}

func TestClampedPositionsStayOnGrid(t *testing.T) {
	g := NewPheromoneGrid(1000, 720, 8)

	for _, p := range []r2.Vec{{X: 1000, Y: 360}, {X: 5000, Y: 720}, {X: -3, Y: 1e9}} {
		c := ClampToBounds(p, 1000, 720)
		g.Reset()
		g.Deposit(c.X, c.Y, 0.5)
		if got := g.Sample(c.X, c.Y); got != 0.5 {
			t.Errorf("deposit at clamped %v: sample %f, want 0.5", c, got)
		}
	}
}
