// Package sim runs the colony simulation: agents, environment, pheromone
// field and the per-tick update order.
package sim

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/emergent/components"
	"github.com/pthm-cable/emergent/config"
	"github.com/pthm-cable/emergent/systems"
	"github.com/pthm-cable/emergent/telemetry"
)

// nominalFrame is the wall-clock duration that maps to dt = 1.0.
const nominalFrame = 1000.0 / 60.0 // ms

// FrameDelta converts elapsed wall time to a normalized tick delta.
func FrameDelta(elapsed time.Duration) float64 {
	return float64(elapsed) / float64(time.Millisecond) / nominalFrame
}

// Options configures simulation construction.
type Options struct {
	Seed     uint64 // 0 = derive from the current time
	LogStats bool   // Emit window stats through slog

	// Output receives telemetry and perf windows. May be nil.
	Output *telemetry.OutputManager

	// StatsCallback is invoked every time a telemetry window is flushed.
	StatsCallback func(telemetry.WindowStats)
}

type (
	foragerMapper = ecs.Map5[components.Position, components.Velocity, components.Motion, components.Agent, components.Forager]
	builderMapper = ecs.Map5[components.Position, components.Velocity, components.Motion, components.Agent, components.Builder]
	scoutMapper   = ecs.Map5[components.Position, components.Velocity, components.Motion, components.Agent, components.Scout]
	foragerFilter = ecs.Filter5[components.Position, components.Velocity, components.Motion, components.Agent, components.Forager]
	builderFilter = ecs.Filter5[components.Position, components.Velocity, components.Motion, components.Agent, components.Builder]
	scoutFilter   = ecs.Filter5[components.Position, components.Velocity, components.Motion, components.Agent, components.Scout]
)

// Simulation holds the complete simulation state.
type Simulation struct {
	cfg  *config.Config
	seed uint64
	rng  *rand.Rand

	world *ecs.World

	foragers      *foragerMapper
	builders      *builderMapper
	scouts        *scoutMapper
	foragerFilter *foragerFilter
	builderFilter *builderFilter
	scoutFilter   *scoutFilter

	posMap *ecs.Map1[components.Position]
	velMap *ecs.Map1[components.Velocity]

	// Per-kind neighbor index, rebuilt every tick
	spatial [components.NumKinds]*systems.SpatialGrid
	scratch []systems.Neighbor

	env       *systems.Environment
	pheromone *systems.PheromoneGrid
	layout    *systems.Layout

	// State
	width, height float64
	tick          int64
	simTime       float64 // Accumulated dt
	nextID        uint32
	counts        [components.NumKinds]int
	foodCollected int
	stats         Stats

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// New creates a simulation from cfg. The simulation keeps cfg and reads it
// live every tick, so callers may mutate it between steps.
func New(cfg *config.Config, opts Options) *Simulation {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	s := &Simulation{
		cfg:           cfg,
		seed:          seed,
		width:         cfg.Derived.WorldW,
		height:        cfg.Derived.WorldH,
		output:        opts.Output,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
	}
	s.Reset()

	slog.Info("simulation created",
		"seed", seed,
		"world_w", s.width,
		"world_h", s.height,
		"grid_cols", s.pheromone.Cols,
		"grid_rows", s.pheromone.Rows,
	)
	return s
}

// initWorld creates a fresh ECS world with its mappers and filters.
func (s *Simulation) initWorld() {
	world := ecs.NewWorld()
	s.world = world
	s.foragers = ecs.NewMap5[components.Position, components.Velocity, components.Motion, components.Agent, components.Forager](world)
	s.builders = ecs.NewMap5[components.Position, components.Velocity, components.Motion, components.Agent, components.Builder](world)
	s.scouts = ecs.NewMap5[components.Position, components.Velocity, components.Motion, components.Agent, components.Scout](world)
	s.foragerFilter = ecs.NewFilter5[components.Position, components.Velocity, components.Motion, components.Agent, components.Forager](world)
	s.builderFilter = ecs.NewFilter5[components.Position, components.Velocity, components.Motion, components.Agent, components.Builder](world)
	s.scoutFilter = ecs.NewFilter5[components.Position, components.Velocity, components.Motion, components.Agent, components.Scout](world)
	s.posMap = ecs.NewMap1[components.Position](world)
	s.velMap = ecs.NewMap1[components.Velocity](world)
	s.counts = [components.NumKinds]int{}
}

// initSpatial sizes the neighbor index to the world.
func (s *Simulation) initSpatial() {
	cell := max(s.cfg.Flocking.CohesionRadius, s.cfg.Flocking.ScoutSeparationRadius, 1)
	for k := range s.spatial {
		s.spatial[k] = systems.NewSpatialGrid(s.width, s.height, cell)
	}
}

// Step advances the simulation by one tick of normalized duration dt.
func (s *Simulation) Step(dt float64) {
	dt = clampDT(dt, s.cfg.Sim.MaxDT)

	s.perf.StartTick()

	// 1. Match population targets
	s.perf.StartPhase(telemetry.PhasePopulation)
	s.SyncAgentCounts()

	// 2. Rebuild spatial index
	s.perf.StartPhase(telemetry.PhaseSpatial)
	s.updateSpatialGrid()

	// 3. Behaviors and integration, in kind order
	s.perf.StartPhase(telemetry.PhaseBehaviorPhysics)
	s.updateForagers(dt)
	s.updateBuilders(dt)
	s.updateScouts(dt)

	// 4. Trail decay
	s.perf.StartPhase(telemetry.PhasePheromone)
	s.pheromone.DecayAll(s.cfg.Pheromone.Decay)

	// 5-7. Signals, food, structures
	s.perf.StartPhase(telemetry.PhaseEnvironment)
	s.env.AdvanceSignals(dt)
	s.env.RegenerateFood(dt)
	s.env.AgeStructures(dt, s.cfg.Structure.MaxAge, s.cfg.Structure.FadeRate)

	// 8. Stats snapshot
	s.perf.StartPhase(telemetry.PhaseStats)
	s.updateStats()

	s.tick++

	// 9. Telemetry windows
	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry(dt)

	s.perf.EndTick()
}

func clampDT(dt, maxDT float64) float64 {
	if !(dt > 0) {
		return 0
	}
	return min(dt, maxDT)
}

// updateSpatialGrid rebuilds the per-kind neighbor index.
func (s *Simulation) updateSpatialGrid() {
	for _, g := range s.spatial {
		g.Clear()
	}

	fq := s.foragerFilter.Query()
	for fq.Next() {
		pos, _, _, _, _ := fq.Get()
		s.spatial[components.KindForager].Insert(fq.Entity(), pos.X, pos.Y)
	}
	bq := s.builderFilter.Query()
	for bq.Next() {
		pos, _, _, _, _ := bq.Get()
		s.spatial[components.KindBuilder].Insert(bq.Entity(), pos.X, pos.Y)
	}
	sq := s.scoutFilter.Query()
	for sq.Next() {
		pos, _, _, _, _ := sq.Get()
		s.spatial[components.KindScout].Insert(sq.Entity(), pos.X, pos.Y)
	}
}

// Config returns the live configuration.
func (s *Simulation) Config() *config.Config { return s.cfg }

// Environment returns the environment state. Callers must treat it as read-only.
func (s *Simulation) Environment() *systems.Environment { return s.env }

// Grid returns the pheromone field. Callers must treat it as read-only.
func (s *Simulation) Grid() *systems.PheromoneGrid { return s.pheromone }

// Layout returns the noise layout used for initial placement.
func (s *Simulation) Layout() *systems.Layout { return s.layout }

// Tick returns the number of completed steps since the last reset.
func (s *Simulation) Tick() int64 { return s.tick }

// Seed returns the seed the simulation was created with.
func (s *Simulation) Seed() uint64 { return s.seed }

// Width returns the world width.
func (s *Simulation) Width() float64 { return s.width }

// Height returns the world height.
func (s *Simulation) Height() float64 { return s.height }

// Perf returns the perf collector.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }
