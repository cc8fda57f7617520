package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != ModeObserve {
		t.Errorf("default mode: got %v, want observe", cfg.Mode)
	}
	if cfg.Builder.Threshold != 0.15 {
		t.Errorf("builder threshold: got %f, want 0.15", cfg.Builder.Threshold)
	}
	if cfg.Scout.BucketSize != 40 {
		t.Errorf("scout bucket: got %f, want 40", cfg.Scout.BucketSize)
	}
	if cfg.Derived.WorldW != 1000 || cfg.Derived.WorldH != 720 {
		t.Errorf("world size: got %fx%f, want 1000x720", cfg.Derived.WorldW, cfg.Derived.WorldH)
	}
	if cfg.Derived.GridCols != 125 || cfg.Derived.GridRows != 90 {
		t.Errorf("grid: got %dx%d, want 125x90", cfg.Derived.GridCols, cfg.Derived.GridRows)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user.yaml")
	overlay := []byte(`
mode: add-food
world:
  width: 0
  height: 0
population:
  scouts: 3
toggles:
  signals: false
`)
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != ModeAddFood {
		t.Errorf("mode: got %v, want add-food", cfg.Mode)
	}
	if cfg.Population.Scouts != 3 {
		t.Errorf("scouts: got %d, want 3", cfg.Population.Scouts)
	}
	// Fields absent from the overlay keep their defaults
	if cfg.Population.Foragers != 60 {
		t.Errorf("foragers: got %d, want 60", cfg.Population.Foragers)
	}
	if cfg.Toggles.Signals || !cfg.Toggles.Trails {
		t.Errorf("toggles: got %+v", cfg.Toggles)
	}
	// World falls back to screen size
	if cfg.Derived.WorldW != float64(cfg.Screen.Width) || cfg.Derived.WorldH != float64(cfg.Screen.Height) {
		t.Errorf("world fallback: got %fx%f", cfg.Derived.WorldW, cfg.Derived.WorldH)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown mode", "mode: paint\n"},
		{"bad decay", "pheromone:\n  decay: 1.5\n"},
		{"decay never fades", "pheromone:\n  decay: 1\n"},
		{"zero cell", "pheromone:\n  cell_size: 0\n"},
		{"inverted cooldown", "builder:\n  cooldown_min: 50\n  cooldown_max: 10\n"},
		{"malformed", "population: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestModeText(t *testing.T) {
	for _, m := range Modes {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", m, err)
		}
		var got Mode
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != m {
			t.Errorf("round trip %q: got %v, want %v", text, got, m)
		}
	}
}

func TestWriteYAMLReload(t *testing.T) {
	cfg := Default()
	cfg.Mode = ModeAddObstacle
	cfg.Pheromone.Decay = 0.9

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Mode != ModeAddObstacle {
		t.Errorf("mode: got %v", loaded.Mode)
	}
	if loaded.Pheromone.Decay != 0.9 {
		t.Errorf("decay: got %f, want 0.9", loaded.Pheromone.Decay)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	cp := cfg.Clone()
	cp.Population.Foragers = 1
	cp.Toggles.Flocking = false

	if cfg.Population.Foragers == 1 || !cfg.Toggles.Flocking {
		t.Error("mutating the clone changed the original")
	}
}
