package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func TestOverlayDefaults(t *testing.T) {
	r := NewOverlayRegistry()
	assert.True(t, r.IsEnabled(OverlayTrailField))
	assert.False(t, r.IsEnabled(OverlayPerf))
	assert.Equal(t, []string{"visual", "debug"}, r.Categories())
	assert.Len(t, r.ByCategory("visual"), 3)
}

func TestOverlayHotkeys(t *testing.T) {
	r := NewOverlayRegistry()

	id, on, ok := r.HandleKeyPress(rl.KeyTwo)
	assert.True(t, ok)
	assert.Equal(t, OverlaySenseRadius, id)
	assert.True(t, on)
	assert.True(t, r.IsEnabled(OverlaySenseRadius))

	_, on, _ = r.HandleKeyPress(rl.KeyTwo)
	assert.False(t, on)

	_, _, ok = r.HandleKeyPress(rl.KeyZ)
	assert.False(t, ok)
	_, _, ok = r.HandleKeyPress(0)
	assert.False(t, ok)
}

func TestOverlayRegisterReplaces(t *testing.T) {
	r := NewOverlayRegistry()
	r.Register(OverlayDescriptor{ID: OverlayPerf, Name: "Perf", Category: "debug", Default: true})

	assert.True(t, r.IsEnabled(OverlayPerf))
	assert.Len(t, r.ByCategory("debug"), 1)

	r.SetEnabled("missing", true)
	assert.False(t, r.IsEnabled("missing"))
	assert.False(t, r.Toggle("missing"))
}
