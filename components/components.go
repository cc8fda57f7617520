// Package components defines ECS components for the simulation.
package components

import "fmt"

// Kind identifies an agent's role.
type Kind uint8

const (
	KindForager Kind = iota
	KindBuilder
	KindScout

	NumKinds = 3
)

// Kinds lists every agent kind in step order.
var Kinds = [NumKinds]Kind{KindForager, KindBuilder, KindScout}

func (k Kind) String() string {
	switch k {
	case KindForager:
		return "forager"
	case KindBuilder:
		return "builder"
	case KindScout:
		return "scout"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Agent holds identity data common to all kinds.
type Agent struct {
	ID   uint32
	Kind Kind
}

// Forager carries food from sources back to its base.
type Forager struct {
	Carrying bool
	BaseIdx  int // Index into the environment's base list
}

// Builder places structures where trails are dense.
type Builder struct {
	BuildCooldown float64 // Ticks until the next structure may be placed
}

// Cell is an exploration bucket coordinate.
type Cell struct {
	X, Y int
}

// Scout explores unvisited space and signals food sightings.
type Scout struct {
	Explored       map[Cell]struct{}
	SignalCooldown float64
}
