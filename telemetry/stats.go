package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Foragers int `csv:"foragers"`
	Builders int `csv:"builders"`
	Scouts   int `csv:"scouts"`
	Carrying int `csv:"carrying"`

	// Foraging
	Pickups       int     `csv:"pickups"`
	Deliveries    int     `csv:"deliveries"`
	DeliveryRate  float64 `csv:"delivery_rate"` // Deliveries per simulated second
	FoodCollected int     `csv:"food_collected"`
	FoodRemaining float64 `csv:"food_remaining"`
	FoodSources   int     `csv:"food_sources"`

	// Building and signalling
	StructuresBuilt int `csv:"structures_built"`
	Structures      int `csv:"structures"`
	SignalsEmitted  int `csv:"signals_emitted"`
	SignalsActive   int `csv:"signals_active"`

	// Population sync
	Spawned int `csv:"spawned"`
	Removed int `csv:"removed"`

	// Pheromone field (sampled at window end)
	TrailCoverage float64 `csv:"trail_coverage"`
	PheromoneMean float64 `csv:"pheromone_mean"`
	PheromoneP50  float64 `csv:"pheromone_p50"` // Over marked cells only
	PheromoneP90  float64 `csv:"pheromone_p90"` // Over marked cells only
}

// Percentile returns the p-th empirical quantile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 1)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeFieldStats returns the mean over all cells and the median and 90th
// percentile over cells holding any pheromone.
func ComputeFieldStats(values []float64) (mean, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	marked := make([]float64, 0, len(values)/4)
	for _, v := range values {
		if v > 0 {
			marked = append(marked, v)
		}
	}
	slices.Sort(marked)

	return mean, Percentile(marked, 0.50), Percentile(marked, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("foragers", s.Foragers),
		slog.Int("builders", s.Builders),
		slog.Int("scouts", s.Scouts),
		slog.Int("carrying", s.Carrying),
		slog.Int("pickups", s.Pickups),
		slog.Int("deliveries", s.Deliveries),
		slog.Float64("delivery_rate", s.DeliveryRate),
		slog.Int("food_collected", s.FoodCollected),
		slog.Float64("food_remaining", s.FoodRemaining),
		slog.Int("structures_built", s.StructuresBuilt),
		slog.Int("structures", s.Structures),
		slog.Int("signals_emitted", s.SignalsEmitted),
		slog.Int("signals_active", s.SignalsActive),
		slog.Float64("trail_coverage", s.TrailCoverage),
		slog.Float64("pheromone_mean", s.PheromoneMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"foragers", s.Foragers,
		"builders", s.Builders,
		"scouts", s.Scouts,
		"carrying", s.Carrying,
		"pickups", s.Pickups,
		"deliveries", s.Deliveries,
		"delivery_rate", s.DeliveryRate,
		"food_collected", s.FoodCollected,
		"food_remaining", s.FoodRemaining,
		"food_sources", s.FoodSources,
		"structures_built", s.StructuresBuilt,
		"structures", s.Structures,
		"signals_emitted", s.SignalsEmitted,
		"signals_active", s.SignalsActive,
		"spawned", s.Spawned,
		"removed", s.Removed,
		"trail_coverage", s.TrailCoverage,
		"pheromone_mean", s.PheromoneMean,
		"pheromone_p50", s.PheromoneP50,
		"pheromone_p90", s.PheromoneP90,
	)
}
