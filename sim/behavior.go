package sim

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/emergent/components"
	"github.com/pthm-cable/emergent/systems"
)

// updateForagers runs the seek/return state machine for every forager and
// integrates its motion. Agents earlier in the query have already moved, so
// neighbor reads see a mix of updated and stale positions.
func (s *Simulation) updateForagers(dt float64) {
	query := s.foragerFilter.Query()
	for query.Next() {
		pos, vel, mot, _, f := query.Get()
		force := s.foragerForce(query.Entity(), pos, vel, mot, f)
		s.integrate(pos, vel, mot, force, dt)
	}
}

// updateBuilders follows trails and places structures in dense areas.
func (s *Simulation) updateBuilders(dt float64) {
	query := s.builderFilter.Query()
	for query.Next() {
		pos, vel, mot, _, b := query.Get()
		force := s.builderForce(pos, mot, b, dt)
		s.integrate(pos, vel, mot, force, dt)
	}
}

// updateScouts explores, spreads out and signals food sightings.
func (s *Simulation) updateScouts(dt float64) {
	query := s.scoutFilter.Query()
	for query.Next() {
		pos, vel, mot, _, sc := query.Get()
		force := s.scoutForce(query.Entity(), pos, mot, sc, dt)
		s.integrate(pos, vel, mot, force, dt)
	}
}

// foragerForce computes a forager's steering for this tick and applies its
// pickup and delivery transitions.
func (s *Simulation) foragerForce(e ecs.Entity, pos *components.Position, vel *components.Velocity,
	mot *components.Motion, f *components.Forager) r2.Vec {

	cfg := s.cfg
	p := r2.Vec(*pos)
	var force r2.Vec

	if f.Carrying {
		base := s.env.Bases[min(max(f.BaseIdx, 0), len(s.env.Bases)-1)]
		home := r2.Vec{X: base.X, Y: base.Y}
		force = systems.Seek(p, home, cfg.Forces.Return)
		s.pheromone.Deposit(p.X, p.Y, cfg.Pheromone.Deposit)

		if r2.Norm(r2.Sub(home, p)) <= base.Radius+cfg.Forager.ReturnMargin {
			f.Carrying = false
			s.foodCollected++
			s.collector.RecordDelivery()
		}
	} else if idx := s.env.NearestFood(p.X, p.Y, mot.SenseRadius); idx >= 0 {
		food := &s.env.Foods[idx]
		target := r2.Vec{X: food.X, Y: food.Y}
		force = systems.Seek(p, target, cfg.Forces.Seek)

		if r2.Norm(r2.Sub(target, p)) <= food.Radius+cfg.Forager.PickupMargin {
			if food.Take(cfg.Forager.Take) > 0 {
				f.Carrying = true
				s.collector.RecordPickup()
			}
		}
	} else {
		force = s.trailOrWander(p, mot)
	}

	if cfg.Toggles.Flocking {
		params := systems.FlockParamsFrom(cfg.Flocking)
		s.scratch = s.spatial[components.KindForager].QueryRadiusInto(s.scratch[:0],
			p.X, p.Y, params.QueryRadius(), e, s.posMap, s.velMap)
		force = r2.Add(force, systems.Flock(r2.Vec(*vel), s.scratch, params))
	}

	if cfg.Toggles.Signals {
		force = r2.Add(force, systems.SignalPull(p, s.env.Signals, cfg.Forces.SignalBand, cfg.Forces.Signal))
	}

	return r2.Add(force, s.hazards(p))
}

// builderForce computes a builder's steering and places a structure at its
// current position when the local trail is dense enough.
func (s *Simulation) builderForce(pos *components.Position, mot *components.Motion,
	b *components.Builder, dt float64) r2.Vec {

	cfg := s.cfg
	p := r2.Vec(*pos)

	b.BuildCooldown -= dt
	force := s.trailOrWander(p, mot)

	if b.BuildCooldown <= 0 &&
		len(s.env.Structures) < cfg.Builder.MaxStructures &&
		s.pheromone.SampleArea(p.X, p.Y, cfg.Builder.AreaRadius) > cfg.Builder.Threshold &&
		s.env.StructuresWithin(p.X, p.Y, cfg.Builder.Spacing) < cfg.Builder.MaxNearby {

		s.env.Structures = append(s.env.Structures, systems.Structure{X: p.X, Y: p.Y, Opacity: 1})
		b.BuildCooldown = systems.Uniform(mot.Rng, cfg.Builder.CooldownMin, cfg.Builder.CooldownMax)
		s.collector.RecordStructure()
	}

	return r2.Add(force, s.hazards(p))
}

// scoutForce computes a scout's steering, marks its bucket explored and
// emits a signal when it sees food.
func (s *Simulation) scoutForce(e ecs.Entity, pos *components.Position, mot *components.Motion,
	sc *components.Scout, dt float64) r2.Vec {

	cfg := s.cfg
	p := r2.Vec(*pos)
	bucket := cfg.Scout.BucketSize

	sc.SignalCooldown -= dt
	sc.Explored[systems.BucketOf(p.X, p.Y, bucket)] = struct{}{}

	force := systems.Wander(&mot.Wander, mot.Rng, cfg.Forces.WanderJitter, cfg.Forces.Wander)
	force = r2.Add(force, systems.FrontierBias(p, sc.Explored, bucket, s.width, s.height, cfg.Forces.Frontier))

	if cfg.Toggles.Signals && sc.SignalCooldown <= 0 {
		if idx := s.env.NearestFood(p.X, p.Y, mot.SenseRadius); idx >= 0 {
			food := s.env.Foods[idx]
			s.env.Signals = append(s.env.Signals, systems.NewSignal(food.X, food.Y, cfg.Signal))
			sc.SignalCooldown = cfg.Scout.SignalCooldown
			s.collector.RecordSignal()
		}
	}

	if cfg.Toggles.Flocking {
		radius := cfg.Flocking.ScoutSeparationRadius
		s.scratch = s.spatial[components.KindScout].QueryRadiusInto(s.scratch[:0],
			p.X, p.Y, radius, e, s.posMap, s.velMap)
		force = r2.Add(force, systems.Separation(s.scratch, radius, cfg.Flocking.ScoutSeparationWeight))
	}

	return r2.Add(force, s.hazards(p))
}

// trailOrWander follows the pheromone gradient when trails are enabled and
// the gradient is noticeable, and wanders otherwise.
func (s *Simulation) trailOrWander(p r2.Vec, mot *components.Motion) r2.Vec {
	cfg := s.cfg
	if cfg.Toggles.Trails {
		grad := s.pheromone.Gradient(p.X, p.Y, cfg.Pheromone.GradientRadius, cfg.Pheromone.GradientThreshold)
		if grad != (r2.Vec{}) {
			return r2.Scale(cfg.Forces.Trail, grad)
		}
	}
	return systems.Wander(&mot.Wander, mot.Rng, cfg.Forces.WanderJitter, cfg.Forces.Wander)
}

// hazards returns obstacle avoidance plus the boundary push.
func (s *Simulation) hazards(p r2.Vec) r2.Vec {
	f := s.cfg.Forces
	return r2.Add(
		systems.AvoidObstacles(p, s.env.Obstacles, f.ObstacleRange, f.Obstacle),
		systems.Boundary(p, s.width, s.height, f.BoundaryMargin, f.Boundary),
	)
}

// integrate applies force to velocity, damps and clamps speed, then moves
// the agent and keeps it inside the world.
func (s *Simulation) integrate(pos *components.Position, vel *components.Velocity,
	mot *components.Motion, force r2.Vec, dt float64) {

	cfg := s.cfg.Sim
	v := r2.Add(r2.Vec(*vel), r2.Scale(cfg.ForceScale*dt, force))
	v = r2.Scale(cfg.Damping, v)
	v = systems.ClampLength(v, mot.MaxSpeed*cfg.SpeedMultiplier)

	p := r2.Add(r2.Vec(*pos), r2.Scale(dt, v))
	p = systems.ClampToBounds(p, s.width, s.height)

	*vel = components.Velocity(v)
	*pos = components.Position(p)
	mot.Age += dt
}
