package sim

import (
	"github.com/pthm-cable/emergent/components"
	"github.com/pthm-cable/emergent/telemetry"
)

// Stats is the snapshot shown by viewers.
type Stats struct {
	FoodCollected int
	ActiveAgents  int
	TrailCoverage float64 // Percent of cells above the coverage threshold
}

// Stats returns the snapshot computed at the end of the last step.
func (s *Simulation) Stats() Stats { return s.stats }

func (s *Simulation) updateStats() {
	s.stats = Stats{
		FoodCollected: s.foodCollected,
		ActiveAgents:  s.counts[components.KindForager] + s.counts[components.KindBuilder] + s.counts[components.KindScout],
		TrailCoverage: 100 * s.pheromone.Coverage(s.cfg.Pheromone.CoverageThreshold),
	}
}

// AgentView is a read-only copy of one agent's state for renderers.
type AgentView struct {
	ID       uint32
	Kind     components.Kind
	X, Y     float64
	VX, VY   float64
	Carrying bool
	BaseSlot int
	Age      float64
}

// EachAgent calls fn for every agent, foragers first, then builders, then scouts.
func (s *Simulation) EachAgent(fn func(AgentView)) {
	fq := s.foragerFilter.Query()
	for fq.Next() {
		pos, vel, mot, a, f := fq.Get()
		fn(AgentView{ID: a.ID, Kind: a.Kind, X: pos.X, Y: pos.Y, VX: vel.X, VY: vel.Y,
			Carrying: f.Carrying, BaseSlot: f.BaseIdx, Age: mot.Age})
	}
	bq := s.builderFilter.Query()
	for bq.Next() {
		pos, vel, mot, a, _ := bq.Get()
		fn(AgentView{ID: a.ID, Kind: a.Kind, X: pos.X, Y: pos.Y, VX: vel.X, VY: vel.Y, BaseSlot: -1, Age: mot.Age})
	}
	sq := s.scoutFilter.Query()
	for sq.Next() {
		pos, vel, mot, a, _ := sq.Get()
		fn(AgentView{ID: a.ID, Kind: a.Kind, X: pos.X, Y: pos.Y, VX: vel.X, VY: vel.Y, BaseSlot: -1, Age: mot.Age})
	}
}

// sample gathers the population and field state recorded with each telemetry window.
func (s *Simulation) sample() telemetry.Sample {
	carrying := 0
	fq := s.foragerFilter.Query()
	for fq.Next() {
		_, _, _, _, f := fq.Get()
		if f.Carrying {
			carrying++
		}
	}
	return telemetry.Sample{
		Foragers:      s.counts[components.KindForager],
		Builders:      s.counts[components.KindBuilder],
		Scouts:        s.counts[components.KindScout],
		Carrying:      carrying,
		FoodCollected: s.foodCollected,
		FoodRemaining: s.env.TotalFood(),
		FoodSources:   len(s.env.Foods),
		Structures:    len(s.env.Structures),
		Signals:       len(s.env.Signals),
		TrailCoverage: s.stats.TrailCoverage,
		Pheromone:     s.pheromone.Values(),
	}
}
