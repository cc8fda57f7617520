package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/emergent/config"
	"github.com/pthm-cable/emergent/sim"
)

func quietSim(t *testing.T) *sim.Simulation {
	t.Helper()
	cfg := config.Default()
	cfg.Food.Initial = 0
	cfg.Obstacle.Initial = 0
	cfg.Population.Foragers = 0
	cfg.Population.Builders = 0
	cfg.Population.Scouts = 0
	return sim.New(cfg, sim.Options{Seed: 7})
}

func TestTrailRune(t *testing.T) {
	_, ok := trailRune(0)
	assert.False(t, ok)

	ch, ok := trailRune(0.05)
	require.True(t, ok)
	assert.Equal(t, '.', ch)

	ch, _ = trailRune(5)
	assert.Equal(t, '*', ch)
}

func TestRasterLayering(t *testing.T) {
	r := newRaster(10, 10, 100, 100)
	for i := range r.cells {
		r.cells[i] = glyph{Ch: ' ', Slot: -1}
	}

	r.put(15, 15, glyph{Ch: 'f', Layer: layerAgent})
	r.put(15, 15, glyph{Ch: '.', Layer: layerTrail})
	assert.Equal(t, 'f', r.at(1, 1).Ch, "lower layer must not overwrite")

	r.put(-1, 5, glyph{Ch: 'x', Layer: layerAgent})
	r.put(100, 5, glyph{Ch: 'x', Layer: layerAgent})
	for _, g := range r.cells {
		assert.NotEqual(t, 'x', g.Ch, "out of bounds write landed")
	}
}

func TestRasterizeShowsEnvironment(t *testing.T) {
	s := quietSim(t)
	s.PlaceFood(505, 305)
	s.PlaceObstacle(205, 605)

	r := rasterize(s, 100, 72, false)
	require.Equal(t, 100, r.cols)

	assert.Equal(t, '%', r.at(50, 30).Ch)
	assert.Equal(t, '#', r.at(20, 60).Ch)

	for _, b := range s.Environment().Bases {
		cx, cy := int(b.X/r.sx), int(b.Y/r.sy)
		g := r.at(cx, cy)
		assert.Equal(t, layerBase, g.Layer)
		assert.Equal(t, b.Slot, g.Slot)
	}
}

func TestRasterizeTrails(t *testing.T) {
	s := quietSim(t)
	s.Grid().Set(505, 305, 1)

	off := rasterize(s, 100, 72, false)
	assert.Equal(t, layerEmpty, off.at(50, 30).Layer)

	on := rasterize(s, 100, 72, true)
	assert.Equal(t, layerTrail, on.at(50, 30).Layer)
}
