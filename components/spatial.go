package components

import "math/rand/v2"

// Position represents an agent's world position.
type Position struct {
	X, Y float64
}

// Velocity represents an agent's velocity in world units per tick.
type Velocity struct {
	X, Y float64
}

// Motion holds the movement state shared by every agent kind.
type Motion struct {
	MaxSpeed    float64
	SenseRadius float64
	Wander      float64 // Wander heading in radians
	Age         float64 // Ticks alive

	// Rng is the agent's own random stream, seeded once at spawn.
	Rng *rand.Rand
}
