package sim

import (
	"log/slog"

	"github.com/pthm-cable/emergent/config"
	"github.com/pthm-cable/emergent/systems"
)

// Click applies the current interaction mode at a world position.
// Clicks outside the world are ignored.
func (s *Simulation) Click(x, y float64) {
	if !s.inBounds(x, y) {
		return
	}
	switch s.cfg.Mode {
	case config.ModeObserve:
	case config.ModeAddFood:
		s.PlaceFood(x, y)
	case config.ModeAddObstacle:
		s.PlaceObstacle(x, y)
	}
}

// PlaceFood adds a randomized food source at (x, y).
func (s *Simulation) PlaceFood(x, y float64) {
	if !s.inBounds(x, y) {
		return
	}
	s.env.Foods = append(s.env.Foods, systems.RandomFood(s.rng, x, y, s.cfg.Food))
	slog.Debug("food placed", "x", x, "y", y, "total", len(s.env.Foods))
}

// PlaceObstacle adds a randomized obstacle centered on (x, y).
func (s *Simulation) PlaceObstacle(x, y float64) {
	if !s.inBounds(x, y) {
		return
	}
	s.env.Obstacles = append(s.env.Obstacles, systems.RandomObstacle(s.rng, x, y, s.cfg.Obstacle))
	slog.Debug("obstacle placed", "x", x, "y", y, "total", len(s.env.Obstacles))
}

func (s *Simulation) inBounds(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= s.width && y <= s.height
}
