package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/emergent/components"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.0},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.0},
		{"clamped above", []float64{1, 2, 3}, 1.5, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeFieldStats(t *testing.T) {
	// 10 marked cells among 20
	values := make([]float64, 20)
	for i := range 10 {
		values[i*2] = float64(i+1) / 10
	}

	mean, p50, p90 := ComputeFieldStats(values)

	if math.Abs(mean-0.275) > 0.001 {
		t.Errorf("mean = %v, want 0.275", mean)
	}
	if math.Abs(p50-0.5) > 0.001 {
		t.Errorf("p50 = %v, want 0.5", p50)
	}
	if math.Abs(p90-0.9) > 0.001 {
		t.Errorf("p90 = %v, want 0.9", p90)
	}
}

func TestComputeFieldStatsEmpty(t *testing.T) {
	mean, p50, p90 := ComputeFieldStats(nil)
	if mean != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty field should return all zeros")
	}

	// All-zero field has a mean but no marked cells
	mean, p50, p90 = ComputeFieldStats(make([]float64, 8))
	if mean != 0 || p50 != 0 || p90 != 0 {
		t.Error("unmarked field should return all zeros")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1) // 60 ticks
	if c.WindowDurationTicks() != 60 {
		t.Fatalf("window ticks = %d, want 60", c.WindowDurationTicks())
	}

	c.RecordSpawn(components.KindForager)
	c.RecordSpawn(components.KindScout)
	c.RecordRemoval(components.KindBuilder)
	for range 3 {
		c.RecordPickup()
	}
	c.RecordDelivery()
	c.RecordDelivery()
	c.RecordStructure()
	c.RecordSignal()

	if c.ShouldFlush(59) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(60) {
		t.Error("should flush at the window end")
	}

	stats := c.Flush(60, Sample{
		SimTime:       60,
		Foragers:      10,
		Carrying:      4,
		FoodCollected: 7,
		Structures:    2,
		TrailCoverage: 12.5,
		Pheromone:     []float64{0, 0.5, 1, 0},
	})

	if stats.Pickups != 3 || stats.Deliveries != 2 || stats.StructuresBuilt != 1 || stats.SignalsEmitted != 1 {
		t.Errorf("event counts wrong: %+v", stats)
	}
	if stats.Spawned != 2 || stats.Removed != 1 {
		t.Errorf("spawned/removed = %d/%d, want 2/1", stats.Spawned, stats.Removed)
	}
	if stats.SimTimeSec != 1 {
		t.Errorf("sim time = %v, want 1", stats.SimTimeSec)
	}
	if stats.DeliveryRate != 2 {
		t.Errorf("delivery rate = %v, want 2/s", stats.DeliveryRate)
	}
	if stats.FoodCollected != 7 || stats.Foragers != 10 || stats.Carrying != 4 {
		t.Errorf("sample not copied: %+v", stats)
	}
	if math.Abs(stats.PheromoneMean-0.375) > 1e-9 {
		t.Errorf("pheromone mean = %v, want 0.375", stats.PheromoneMean)
	}

	// Counters reset, window advances
	if c.ShouldFlush(100) {
		t.Error("new window should start at the flush tick")
	}
	next := c.Flush(120, Sample{})
	if next.Pickups != 0 || next.Spawned != 0 || next.WindowStartTick != 60 {
		t.Errorf("counters not reset: %+v", next)
	}
}
