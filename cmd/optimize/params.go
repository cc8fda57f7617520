package main

import (
	"github.com/pthm-cable/emergent/config"
)

// ParamSpec is one tunable config field with its search bounds.
type ParamSpec struct {
	Name     string
	Min, Max float64
	Default  float64

	field func(*config.Config) *float64
}

// ParamVector is the ordered set of tuned parameters. Vectors passed to its
// methods are indexed like Specs.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector tunes trail, steering and builder parameters, starting from
// the embedded defaults.
func NewParamVector() *ParamVector {
	specs := []ParamSpec{
		{Name: "decay", Min: 0.95, Max: 0.998,
			field: func(c *config.Config) *float64 { return &c.Pheromone.Decay }},
		{Name: "deposit", Min: 0.02, Max: 0.3,
			field: func(c *config.Config) *float64 { return &c.Pheromone.Deposit }},
		{Name: "trail_weight", Min: 0.2, Max: 3.0,
			field: func(c *config.Config) *float64 { return &c.Forces.Trail }},
		{Name: "seek_weight", Min: 0.2, Max: 2.5,
			field: func(c *config.Config) *float64 { return &c.Forces.Seek }},
		{Name: "wander_weight", Min: 0.05, Max: 1.0,
			field: func(c *config.Config) *float64 { return &c.Forces.Wander }},
		{Name: "cohesion_weight", Min: 0, Max: 0.6,
			field: func(c *config.Config) *float64 { return &c.Flocking.CohesionWeight }},
		{Name: "builder_threshold", Min: 0.02, Max: 0.6,
			field: func(c *config.Config) *float64 { return &c.Builder.Threshold }},
	}

	defaults := config.Default()
	for i := range specs {
		s := &specs[i]
		s.Default = min(max(*s.field(defaults), s.Min), s.Max)
	}
	return &ParamVector{Specs: specs}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int { return len(pv.Specs) }

// DefaultVector returns each parameter's starting value.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.each(func(_ int, s ParamSpec) float64 { return s.Default })
}

// Normalize maps raw values onto [0, 1] within each parameter's bounds.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return (raw[i] - s.Min) / (s.Max - s.Min) })
}

// Denormalize is the inverse of Normalize. CMA-ES may step outside [0, 1],
// so results can fall outside the bounds until clamped.
func (pv *ParamVector) Denormalize(norm []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return s.Min + norm[i]*(s.Max-s.Min) })
}

// Clamp bounds every value to its parameter's range.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return min(max(v[i], s.Min), s.Max) })
}

// ApplyToConfig writes clamped values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = v
	}
}

// ExtractFromConfig reads the tuned fields from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return pv.each(func(_ int, s ParamSpec) float64 { return *s.field(cfg) })
}

func (pv *ParamVector) each(fn func(i int, s ParamSpec) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = fn(i, s)
	}
	return out
}
