package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/emergent/components"
	"github.com/pthm-cable/emergent/systems"
	"github.com/pthm-cable/emergent/telemetry"
)

// Reset rebuilds the environment, clears the pheromone field, respawns all
// agents and zeroes the stats. The same seed reproduces the same layout.
func (s *Simulation) Reset() {
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	s.tick = 0
	s.simTime = 0
	s.nextID = 0
	s.foodCollected = 0
	s.stats = Stats{}
	s.collector = telemetry.NewCollector(s.cfg.Telemetry.StatsWindow)

	s.initWorld()
	s.initSpatial()
	s.pheromone = systems.NewPheromoneGrid(s.width, s.height, s.cfg.Pheromone.CellSize)
	s.layout = systems.NewLayout(int64(s.seed), s.cfg.Layout)
	s.initEnvironment()

	s.SyncAgentCounts()
	s.updateStats()

	slog.Debug("simulation reset",
		"foods", len(s.env.Foods),
		"obstacles", len(s.env.Obstacles),
		"bases", len(s.env.Bases),
		"agents", s.stats.ActiveAgents,
	)
}

// initEnvironment places bases, obstacles and food.
func (s *Simulation) initEnvironment() {
	cfg := s.cfg
	s.env = &systems.Environment{}

	// Bases spread evenly across the width, jittered vertically
	for i := range cfg.Base.Count {
		x := s.width * float64(i+1) / float64(cfg.Base.Count+1)
		y := s.height * systems.Uniform(s.rng, 0.3, 0.7)
		s.env.Bases = append(s.env.Bases, systems.Base{X: x, Y: y, Radius: cfg.Base.Radius, Slot: i})
	}

	for range cfg.Obstacle.Initial {
		x, y := s.layout.Point(s.rng, s.width, s.height, func(x, y float64) bool {
			return s.clearOfBases(x, y, cfg.Obstacle.BaseClear+max(cfg.Obstacle.RadiusMax, cfg.Obstacle.SideMax))
		})
		s.env.Obstacles = append(s.env.Obstacles, systems.RandomObstacle(s.rng, x, y, cfg.Obstacle))
	}

	for range cfg.Food.Initial {
		x, y := s.layout.Point(s.rng, s.width, s.height, func(x, y float64) bool {
			return s.clearOfBases(x, y, 3*cfg.Base.Radius) && !s.env.InsideObstacle(x, y)
		})
		s.env.Foods = append(s.env.Foods, systems.RandomFood(s.rng, x, y, cfg.Food))
	}
}

// clearOfBases reports whether (x, y) is at least gap beyond every base edge.
func (s *Simulation) clearOfBases(x, y, gap float64) bool {
	for _, b := range s.env.Bases {
		if math.Hypot(x-b.X, y-b.Y) < b.Radius+gap {
			return false
		}
	}
	return true
}

// newMotion creates the shared movement state for a new agent of kind.
func (s *Simulation) newMotion(id uint32, kind components.Kind) components.Motion {
	kc := s.cfg.Agents.Forager
	switch kind {
	case components.KindBuilder:
		kc = s.cfg.Agents.Builder
	case components.KindScout:
		kc = s.cfg.Agents.Scout
	}
	return components.Motion{
		MaxSpeed:    kc.MaxSpeed,
		SenseRadius: kc.SenseRadius,
		Wander:      s.rng.Float64() * 2 * math.Pi,
		Rng:         rand.New(rand.NewPCG(s.rng.Uint64(), uint64(id))),
	}
}

// spawnAgent creates one agent of kind. Foragers start inside a random base;
// other kinds start anywhere in the world.
func (s *Simulation) spawnAgent(kind components.Kind) ecs.Entity {
	id := s.nextID
	s.nextID++

	mot := s.newMotion(id, kind)
	agent := components.Agent{ID: id, Kind: kind}
	vel := components.Velocity{}

	var e ecs.Entity
	switch kind {
	case components.KindForager:
		baseIdx := s.rng.IntN(len(s.env.Bases))
		b := s.env.Bases[baseIdx]
		angle := s.rng.Float64() * 2 * math.Pi
		r := s.rng.Float64() * b.Radius
		pos := components.Position{X: b.X + math.Cos(angle)*r, Y: b.Y + math.Sin(angle)*r}
		e = s.foragers.NewEntity(&pos, &vel, &mot, &agent, &components.Forager{BaseIdx: baseIdx})
	case components.KindBuilder:
		pos := s.randomPosition()
		e = s.builders.NewEntity(&pos, &vel, &mot, &agent, &components.Builder{
			BuildCooldown: systems.Uniform(s.rng, s.cfg.Builder.CooldownMin, s.cfg.Builder.CooldownMax),
		})
	case components.KindScout:
		pos := s.randomPosition()
		e = s.scouts.NewEntity(&pos, &vel, &mot, &agent, &components.Scout{
			Explored: make(map[components.Cell]struct{}),
		})
	default:
		panic(fmt.Sprintf("sim: unknown agent kind %d", kind))
	}

	s.counts[kind]++
	s.collector.RecordSpawn(kind)
	return e
}

func (s *Simulation) randomPosition() components.Position {
	return components.Position{X: s.rng.Float64() * s.width, Y: s.rng.Float64() * s.height}
}

// removeAgent removes the first agent of kind in query order.
func (s *Simulation) removeAgent(kind components.Kind) bool {
	var e ecs.Entity
	found := false

	switch kind {
	case components.KindForager:
		q := s.foragerFilter.Query()
		if q.Next() {
			e, found = q.Entity(), true
			q.Close()
		}
	case components.KindBuilder:
		q := s.builderFilter.Query()
		if q.Next() {
			e, found = q.Entity(), true
			q.Close()
		}
	case components.KindScout:
		q := s.scoutFilter.Query()
		if q.Next() {
			e, found = q.Entity(), true
			q.Close()
		}
	}
	if !found {
		return false
	}

	s.world.RemoveEntity(e)
	s.counts[kind]--
	s.collector.RecordRemoval(kind)
	return true
}

// target returns the configured population target for kind.
func (s *Simulation) target(kind components.Kind) int {
	p := s.cfg.Population
	switch kind {
	case components.KindForager:
		return max(0, p.Foragers)
	case components.KindBuilder:
		return max(0, p.Builders)
	case components.KindScout:
		return max(0, p.Scouts)
	}
	return 0
}

// SyncAgentCounts spawns or removes agents until every kind matches its
// population target. Must not be called during Step.
func (s *Simulation) SyncAgentCounts() {
	for _, kind := range components.Kinds {
		want := s.target(kind)
		if s.counts[kind] == want {
			continue
		}
		before := s.counts[kind]
		for s.counts[kind] < want {
			s.spawnAgent(kind)
		}
		for s.counts[kind] > want {
			if !s.removeAgent(kind) {
				break
			}
		}
		slog.Debug("population synced", "kind", kind.String(), "from", before, "to", s.counts[kind])
	}
}

// Count returns the current number of agents of kind.
func (s *Simulation) Count(kind components.Kind) int {
	return s.counts[kind]
}

// Resize changes the world dimensions. The pheromone field is reallocated
// and loses its history. Bases are pulled inside, environment entities left
// outside are dropped and agents are pulled inside on their next step.
func (s *Simulation) Resize(w, h float64) {
	if w <= 0 || h <= 0 || (w == s.width && h == s.height) {
		return
	}
	s.width, s.height = w, h
	s.cfg.SetWorldSize(w, h)
	s.pheromone = systems.NewPheromoneGrid(w, h, s.cfg.Pheromone.CellSize)
	s.initSpatial()

	// Bases are pulled inside; everything else outside the world is dropped
	for i := range s.env.Bases {
		b := &s.env.Bases[i]
		p := systems.ClampToBounds(r2.Vec{X: b.X, Y: b.Y}, w, h)
		b.X, b.Y = p.X, p.Y
	}
	s.env.Crop(w, h)

	slog.Info("world resized", "w", w, "h", h, "grid_cols", s.pheromone.Cols, "grid_rows", s.pheromone.Rows)
}
