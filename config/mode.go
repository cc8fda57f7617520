package config

import "fmt"

// Mode selects what a click in the world does.
type Mode int

const (
	ModeObserve Mode = iota
	ModeAddFood
	ModeAddObstacle
)

var modeNames = [...]string{
	ModeObserve:     "observe",
	ModeAddFood:     "add-food",
	ModeAddObstacle: "add-obstacle",
}

// Modes lists every interaction mode in display order.
var Modes = []Mode{ModeObserve, ModeAddFood, ModeAddObstacle}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("unknown mode %d", int(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	s := string(text)
	for i, name := range modeNames {
		if name == s {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", s)
}
