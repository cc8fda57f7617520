package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/emergent/components"
	"github.com/pthm-cable/emergent/config"
)

// Wander jitters the heading by up to ±jitter/2 and returns a force along it.
func Wander(heading *float64, rng *rand.Rand, jitter, weight float64) r2.Vec {
	*heading = normalizeHeading(*heading + (rng.Float64()-0.5)*jitter)
	return r2.Vec{X: math.Cos(*heading) * weight, Y: math.Sin(*heading) * weight}
}

// Seek returns a force of the given strength from `from` toward `to`.
func Seek(from, to r2.Vec, strength float64) r2.Vec {
	return r2.Scale(strength, unitOrZero(r2.Sub(to, from)))
}

// FlockParams holds alignment, cohesion and separation settings.
type FlockParams struct {
	AlignRadius, CohesionRadius, SeparationRadius float64
	AlignWeight, CohesionWeight, SeparationWeight float64
}

// FlockParamsFrom extracts forager flocking parameters from config.
func FlockParamsFrom(cfg config.FlockingConfig) FlockParams {
	return FlockParams{
		AlignRadius:      cfg.AlignRadius,
		CohesionRadius:   cfg.CohesionRadius,
		SeparationRadius: cfg.SeparationRadius,
		AlignWeight:      cfg.AlignWeight,
		CohesionWeight:   cfg.CohesionWeight,
		SeparationWeight: cfg.SeparationWeight,
	}
}

// QueryRadius returns the largest radius the params look at.
func (p FlockParams) QueryRadius() float64 {
	return max(p.AlignRadius, p.CohesionRadius, p.SeparationRadius)
}

// Flock combines alignment, cohesion and separation against neighbors.
// vel is the agent's own velocity; neighbor deltas are relative to the agent.
func Flock(vel r2.Vec, neighbors []Neighbor, p FlockParams) r2.Vec {
	var align, center r2.Vec
	nAlign, nCenter := 0, 0
	alignSq := p.AlignRadius * p.AlignRadius
	cohesionSq := p.CohesionRadius * p.CohesionRadius

	for _, n := range neighbors {
		if n.DistSq < alignSq {
			align.X += n.VX
			align.Y += n.VY
			nAlign++
		}
		if n.DistSq < cohesionSq {
			center.X += n.DX
			center.Y += n.DY
			nCenter++
		}
	}

	var force r2.Vec
	if nAlign > 0 {
		avg := r2.Scale(1/float64(nAlign), align)
		force = r2.Add(force, r2.Scale(p.AlignWeight, r2.Sub(avg, vel)))
	}
	if nCenter > 0 {
		offset := r2.Scale(1/float64(nCenter), center)
		force = r2.Add(force, r2.Scale(p.CohesionWeight/p.CohesionRadius, offset))
	}
	return r2.Add(force, Separation(neighbors, p.SeparationRadius, p.SeparationWeight))
}

// Separation pushes away from neighbors closer than radius, stronger when closer.
func Separation(neighbors []Neighbor, radius, weight float64) r2.Vec {
	var force r2.Vec
	radiusSq := radius * radius
	for _, n := range neighbors {
		if n.DistSq >= radiusSq || n.DistSq == 0 {
			continue
		}
		d := math.Sqrt(n.DistSq)
		push := (1 - d/radius) / d
		force.X -= n.DX * push
		force.Y -= n.DY * push
	}
	return r2.Scale(weight, force)
}

// AvoidObstacles repels along each obstacle's surface normal within reach,
// at full weight on contact or inside.
func AvoidObstacles(pos r2.Vec, obstacles []Obstacle, reach, weight float64) r2.Vec {
	var force r2.Vec
	for i := range obstacles {
		o := &obstacles[i]
		// Cheap reject on the bounding circle
		if distance(pos.X, pos.Y, o.X, o.Y) > o.Extent()+reach {
			continue
		}
		d, normal := o.Distance(pos.X, pos.Y)
		if d >= reach {
			continue
		}
		strength := weight * (1 - max(d, 0)/reach)
		force = r2.Add(force, r2.Scale(strength, normal))
	}
	return force
}

// Boundary pushes inward from each edge closer than margin, proportional to depth.
func Boundary(pos r2.Vec, w, h, margin, weight float64) r2.Vec {
	if margin <= 0 {
		return r2.Vec{}
	}
	var force r2.Vec
	if pos.X < margin {
		force.X += (margin - pos.X) / margin
	} else if pos.X > w-margin {
		force.X -= (pos.X - (w - margin)) / margin
	}
	if pos.Y < margin {
		force.Y += (margin - pos.Y) / margin
	} else if pos.Y > h-margin {
		force.Y -= (pos.Y - (h - margin)) / margin
	}
	return r2.Scale(weight, force)
}

// SignalPull attracts toward the center of every signal whose ring passes
// within band of pos, scaled by the signal's opacity.
func SignalPull(pos r2.Vec, signals []Signal, band, weight float64) r2.Vec {
	var force r2.Vec
	for i := range signals {
		s := &signals[i]
		center := r2.Vec{X: s.X, Y: s.Y}
		d := r2.Norm(r2.Sub(center, pos))
		if d == 0 || math.Abs(d-s.Radius) >= band {
			continue
		}
		force = r2.Add(force, Seek(pos, center, weight*s.Opacity))
	}
	return force
}

// BucketOf returns the exploration bucket containing (x, y).
func BucketOf(x, y, bucket float64) components.Cell {
	return components.Cell{X: int(math.Floor(x / bucket)), Y: int(math.Floor(y / bucket))}
}

// FrontierBias steers toward neighboring buckets that are not yet explored.
// Probes outside the world are ignored.
func FrontierBias(pos r2.Vec, explored map[components.Cell]struct{}, bucket, w, h, weight float64) r2.Vec {
	var sum r2.Vec
	for _, dir := range gradientDirs {
		probe := r2.Add(pos, r2.Scale(bucket, dir))
		if probe.X < 0 || probe.Y < 0 || probe.X >= w || probe.Y >= h {
			continue
		}
		if _, seen := explored[BucketOf(probe.X, probe.Y, bucket)]; seen {
			continue
		}
		sum = r2.Add(sum, dir)
	}
	// Opposing open directions cancel out
	if r2.Norm(sum) < 1e-9 {
		return r2.Vec{}
	}
	return r2.Scale(weight, unitOrZero(sum))
}
