package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase identifies one stage of Simulation.Step.
type Phase uint8

// Step phases in execution order.
const (
	PhasePopulation Phase = iota
	PhaseSpatial
	PhaseBehaviorPhysics
	PhasePheromone
	PhaseEnvironment
	PhaseStats
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{
	"population", "spatial", "behavior_physics", "pheromone",
	"environment", "stats", "telemetry",
}

// Phases lists every step phase in execution order.
var Phases = func() []Phase {
	out := make([]Phase, NumPhases)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}()

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// PhaseTimes holds one duration per phase.
type PhaseTimes [NumPhases]time.Duration

type tickSample struct {
	total  time.Duration
	phases PhaseTimes
}

// PerfCollector keeps a ring of recent tick timings.
type PerfCollector struct {
	ring   []tickSample
	next   int
	filled int

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector averages over the last window ticks (60 when window < 1).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickSample, window)}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseStart, p.inPhase = phase, now, phase < NumPhases
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the last phase and stores the tick in the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.inPhase = false
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

// RecordFrame marks a rendered frame; called once per frame in window mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarizes the ticks currently in the ring.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	PhaseAvg PhaseTimes
	PhasePct [NumPhases]float64 // Share of the average tick

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the window. An empty collector yields zero tick timings.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{FrameDuration: p.frame}
	if p.frame > 0 {
		out.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return out
	}

	totals := make([]float64, p.filled)
	var sums PhaseTimes
	for i, s := range p.ring[:p.filled] {
		totals[i] = float64(s.total)
		for ph, d := range s.phases {
			sums[ph] += d
		}
	}

	mean := stat.Mean(totals, nil)
	slices.Sort(totals)
	out.AvgTickDuration = time.Duration(mean)
	out.MinTickDuration = time.Duration(totals[0])
	out.MaxTickDuration = time.Duration(totals[len(totals)-1])
	out.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, totals, nil))

	n := time.Duration(p.filled)
	for ph := range sums {
		out.PhaseAvg[ph] = sums[ph] / n
		if mean > 0 {
			out.PhasePct[ph] = float64(out.PhaseAvg[ph]) / mean * 100
		}
	}
	if mean > 0 {
		out.TicksPerSecond = float64(time.Second) / mean
	}
	return out
}

// LogStats logs the window at Info level. Phases under 0.1% are omitted.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"p95_tick_us", s.P95TickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, ph := range Phases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd          int64   `csv:"window_end"`
	AvgTickUS          int64   `csv:"avg_tick_us"`
	MinTickUS          int64   `csv:"min_tick_us"`
	MaxTickUS          int64   `csv:"max_tick_us"`
	P95TickUS          int64   `csv:"p95_tick_us"`
	TicksPerSec        float64 `csv:"ticks_per_sec"`
	FPS                float64 `csv:"fps"`
	PopulationPct      float64 `csv:"population_pct"`
	SpatialPct         float64 `csv:"spatial_pct"`
	BehaviorPhysicsPct float64 `csv:"behavior_physics_pct"`
	PheromonePct       float64 `csv:"pheromone_pct"`
	EnvironmentPct     float64 `csv:"environment_pct"`
	StatsPct           float64 `csv:"stats_pct"`
	TelemetryPct       float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	pct := s.PhasePct
	return PerfStatsCSV{
		WindowEnd:          windowEnd,
		AvgTickUS:          s.AvgTickDuration.Microseconds(),
		MinTickUS:          s.MinTickDuration.Microseconds(),
		MaxTickUS:          s.MaxTickDuration.Microseconds(),
		P95TickUS:          s.P95TickDuration.Microseconds(),
		TicksPerSec:        s.TicksPerSecond,
		FPS:                s.FPS,
		PopulationPct:      pct[PhasePopulation],
		SpatialPct:         pct[PhaseSpatial],
		BehaviorPhysicsPct: pct[PhaseBehaviorPhysics],
		PheromonePct:       pct[PhasePheromone],
		EnvironmentPct:     pct[PhaseEnvironment],
		StatsPct:           pct[PhaseStats],
		TelemetryPct:       pct[PhaseTelemetry],
	}
}
