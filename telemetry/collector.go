package telemetry

import "github.com/pthm-cable/emergent/components"

// TicksPerSecond is the nominal tick rate used to convert windows to ticks.
const TicksPerSecond = 60

// Sample is the simulation state captured when a window is flushed.
type Sample struct {
	SimTime float64 // Accumulated dt, in ticks

	Foragers, Builders, Scouts int
	Carrying                   int

	FoodCollected int
	FoodRemaining float64
	FoodSources   int
	Structures    int
	Signals       int
	TrailCoverage float64 // Percent

	// Pheromone cell values; read, not retained
	Pheromone []float64
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	pickups    int
	deliveries int
	structures int
	signals    int
	spawned    [components.NumKinds]int
	removed    [components.NumKinds]int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowDurationSec float64) *Collector {
	ticksPerWindow := int64(windowDurationSec * TicksPerSecond)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
	}
}

// RecordPickup records a forager picking up food.
func (c *Collector) RecordPickup() {
	c.pickups++
}

// RecordDelivery records a forager delivering food to its base.
func (c *Collector) RecordDelivery() {
	c.deliveries++
}

// RecordStructure records a builder placing a structure.
func (c *Collector) RecordStructure() {
	c.structures++
}

// RecordSignal records a scout emitting a signal.
func (c *Collector) RecordSignal() {
	c.signals++
}

// RecordSpawn records an agent being added by population sync.
func (c *Collector) RecordSpawn(kind components.Kind) {
	c.spawned[kind]++
}

// RecordRemoval records an agent being removed by population sync.
func (c *Collector) RecordRemoval(kind components.Kind) {
	c.removed[kind]++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int64, s Sample) WindowStats {
	mean, p50, p90 := ComputeFieldStats(s.Pheromone)

	var deliveryRate float64
	if ticks := currentTick - c.windowStartTick; ticks > 0 {
		deliveryRate = float64(c.deliveries) / (float64(ticks) / TicksPerSecond)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      s.SimTime / TicksPerSecond,

		Foragers: s.Foragers,
		Builders: s.Builders,
		Scouts:   s.Scouts,
		Carrying: s.Carrying,

		Pickups:         c.pickups,
		Deliveries:      c.deliveries,
		DeliveryRate:    deliveryRate,
		FoodCollected:   s.FoodCollected,
		FoodRemaining:   s.FoodRemaining,
		FoodSources:     s.FoodSources,
		StructuresBuilt: c.structures,
		Structures:      s.Structures,
		SignalsEmitted:  c.signals,
		SignalsActive:   s.Signals,

		Spawned: c.spawned[components.KindForager] + c.spawned[components.KindBuilder] + c.spawned[components.KindScout],
		Removed: c.removed[components.KindForager] + c.removed[components.KindBuilder] + c.removed[components.KindScout],

		TrailCoverage: s.TrailCoverage,
		PheromoneMean: mean,
		PheromoneP50:  p50,
		PheromoneP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.pickups = 0
	c.deliveries = 0
	c.structures = 0
	c.signals = 0
	c.spawned = [components.NumKinds]int{}
	c.removed = [components.NumKinds]int{}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
