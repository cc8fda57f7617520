package ui

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID names a toggleable view layer.
type OverlayID string

const (
	OverlayTrailField  OverlayID = "trail_field"
	OverlaySenseRadius OverlayID = "sense_radius"
	OverlayBaseLinks   OverlayID = "base_links"
	OverlayPerf        OverlayID = "perf"
)

// OverlayDescriptor describes one overlay and its hotkey.
type OverlayDescriptor struct {
	ID       OverlayID
	Name     string
	Key      int32  // 0 = no hotkey
	KeyLabel string // Shown in the panel, e.g. "1"
	Category string // Panel grouping
	Default  bool   // Enabled at startup
}

var defaultOverlays = []OverlayDescriptor{
	{ID: OverlayTrailField, Name: "Trail Field", Key: rl.KeyOne, KeyLabel: "1", Category: "visual", Default: true},
	{ID: OverlaySenseRadius, Name: "Sense Radius", Key: rl.KeyTwo, KeyLabel: "2", Category: "visual"},
	{ID: OverlayBaseLinks, Name: "Carrier Links", Key: rl.KeyThree, KeyLabel: "3", Category: "visual"},
	{ID: OverlayPerf, Name: "Performance", Key: rl.KeyFour, KeyLabel: "4", Category: "debug"},
}

// OverlayRegistry holds overlay descriptors in registration order and their
// on/off state.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry returns a registry with the standard overlays.
func NewOverlayRegistry() *OverlayRegistry {
	r := &OverlayRegistry{enabled: make(map[OverlayID]bool)}
	for _, d := range defaultOverlays {
		r.Register(d)
	}
	return r
}

// Register adds an overlay in its Default state. Re-registering an ID
// replaces its descriptor in place.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.enabled[desc.ID] = desc.Default
	for i := range r.descriptors {
		if r.descriptors[i].ID == desc.ID {
			r.descriptors[i] = desc
			return
		}
	}
	r.descriptors = append(r.descriptors, desc)
}

// Toggle flips a registered overlay and returns its new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	on, ok := r.enabled[id]
	if !ok {
		return false
	}
	r.enabled[id] = !on
	return !on
}

// SetEnabled sets a registered overlay's state. Unknown IDs are ignored.
func (r *OverlayRegistry) SetEnabled(id OverlayID, on bool) {
	if _, ok := r.enabled[id]; ok {
		r.enabled[id] = on
	}
}

func (r *OverlayRegistry) IsEnabled(id OverlayID) bool { return r.enabled[id] }

// Categories returns the distinct categories in registration order.
func (r *OverlayRegistry) Categories() []string {
	var cats []string
	for _, d := range r.descriptors {
		if !slices.Contains(cats, d.Category) {
			cats = append(cats, d.Category)
		}
	}
	return cats
}

// ByCategory returns the overlays in category, in registration order.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var out []OverlayDescriptor
	for _, d := range r.descriptors {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// HandleKeyPress toggles the overlay bound to key. ok is false when no
// overlay uses the key.
func (r *OverlayRegistry) HandleKeyPress(key int32) (id OverlayID, on, ok bool) {
	if key == 0 {
		return "", false, false
	}
	for _, d := range r.descriptors {
		if d.Key == key {
			return d.ID, r.Toggle(d.ID), true
		}
	}
	return "", false, false
}
