package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/emergent/config"
	"github.com/pthm-cable/emergent/game"
	"github.com/pthm-cable/emergent/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	seeds       []uint64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the window stats of the best seed from the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	foodCollected int
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	windows []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative food delivered, scaled up to 20% by colony quality.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			r := fe.runSimulation(x, s)
			quality := computeQuality(r.windowStats)
			results[idx] = seedResult{
				fitness: computeFitness(r.foodCollected, quality),
				quality: quality,
				windows: r.windowStats,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeed := 0
	for i, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < results[bestSeed].fitness {
			bestSeed = i
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestWindows = results[bestSeed].windows
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run for maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed uint64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}

	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}

	result.foodCollected = g.Sim().Stats().FoodCollected
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(foodCollected × (1.0 + 0.2 × quality))
func computeFitness(foodCollected int, quality float64) float64 {
	return -(float64(foodCollected) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightCoverage   = 0.4
	qualityWeightSteadiness = 0.4
	qualityWeightBuilding   = 0.2

	qualityWarmupWindows = 2   // skip first N windows (warmup)
	targetCoverage       = 25. // percent of cells marked
)

// computeQuality scores colony organisation in [0, 1] from window stats:
// trail coverage near the target, steady deliveries across windows, and
// some structure building.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var coverageSum, builtSum float64
	rates := make([]float64, 0, len(valid))
	for _, w := range valid {
		d := (w.TrailCoverage - targetCoverage) / 15
		coverageSum += math.Exp(-d * d)
		builtSum += float64(w.StructuresBuilt)
		rates = append(rates, w.DeliveryRate)
	}
	n := float64(len(valid))

	coverageScore := coverageSum / n

	steadinessScore := 0.0
	if len(rates) >= 2 {
		c := cv(rates)
		steadinessScore = math.Exp(-c * c)
	}

	buildingScore := 1 - math.Exp(-builtSum/n/3)

	quality := qualityWeightCoverage*coverageScore +
		qualityWeightSteadiness*steadinessScore +
		qualityWeightBuilding*buildingScore

	return clamp01(quality)
}

// cv returns the coefficient of variation (population std/mean), or 0 for
// an empty or zero-mean slice.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := stat.Mean(values, nil)
	if mean == 0 {
		return 0
	}
	return stat.PopStdDev(values, nil) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
