package systems

import (
	"math/rand/v2"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/emergent/config"
)

// Layout places initial environment features where a simplex noise field is
// high, so obstacles and food cluster into organic patches.
type Layout struct {
	noise opensimplex.Noise
	cfg   config.LayoutConfig
}

// NewLayout creates a layout generator with a deterministic noise field.
func NewLayout(seed int64, cfg config.LayoutConfig) *Layout {
	return &Layout{
		noise: opensimplex.NewNormalized(seed),
		cfg:   cfg,
	}
}

// Sample returns the normalized noise value in [0, 1) at a world position.
func (l *Layout) Sample(x, y float64) float64 {
	return l.noise.Eval2(x*l.cfg.NoiseScale, y*l.cfg.NoiseScale)
}

// Point picks a position inside the world margin. Candidates must clear the
// noise threshold and be accepted by ok (nil accepts all). After MaxAttempts
// rejections the last candidate that ok accepted is returned, or failing
// that the last candidate drawn.
func (l *Layout) Point(rng *rand.Rand, w, h float64, ok func(x, y float64) bool) (float64, float64) {
	margin := min(l.cfg.Margin, w/4, h/4)
	var fx, fy float64
	haveFallback := false
	attempts := max(1, l.cfg.MaxAttempts)

	for range attempts {
		x := Uniform(rng, margin, w-margin)
		y := Uniform(rng, margin, h-margin)
		if ok != nil && !ok(x, y) {
			if !haveFallback {
				fx, fy = x, y
			}
			continue
		}
		if !l.cfg.Enabled || l.Sample(x, y) >= l.cfg.Threshold {
			return x, y
		}
		fx, fy = x, y
		haveFallback = true
	}
	return fx, fy
}
