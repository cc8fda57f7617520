package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a value to the [0, 1] range.
func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

// normalizeHeading wraps a heading to [0, 2*Pi).
func normalizeHeading(h float64) float64 {
	const twoPi = 2 * math.Pi
	h = math.Mod(h, twoPi)
	if h < 0 {
		h += twoPi
	}
	return h
}

// unitOrZero returns v scaled to length 1, or the zero vector if v is zero.
func unitOrZero(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// ClampLength scales v down so its length does not exceed maxLen.
func ClampLength(v r2.Vec, maxLen float64) r2.Vec {
	if maxLen <= 0 {
		return r2.Vec{}
	}
	n := r2.Norm(v)
	if n <= maxLen {
		return v
	}
	return r2.Scale(maxLen/n, v)
}

// ClampToBounds clamps a point to [0,w)x[0,h), the region grid lookups
// accept.
func ClampToBounds(p r2.Vec, w, h float64) r2.Vec {
	return r2.Vec{
		X: clampFloat(p.X, 0, math.Nextafter(w, 0)),
		Y: clampFloat(p.Y, 0, math.Nextafter(h, 0)),
	}
}

// distance returns the Euclidean distance between two points.
func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
