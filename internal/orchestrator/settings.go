package orchestrator

import "time"

// Display modes.
const (
	ModeWall   = "wall"
	ModeSingle = "single"
)

// Settings are the tunables the controller reads on every operation.
type Settings struct {
	Mode string
	// SingleYPercent places non-media viewers vertically in single mode.
	SingleYPercent float64

	MasterScale  float64
	MinSize      float64
	DefaultSize  float64
	AnimDuration time.Duration
	Padding      float64
	GatherJitter float64

	// RemovalTimeout bounds how long a close transition may run before
	// Reconcile forces it to finish.
	RemovalTimeout time.Duration
	// ExitDelay is the wait between close-all and quitting on app exit.
	ExitDelay time.Duration

	DarkenerOpacity float64

	CompositeAspectX float64
	CompositeAspectY float64
	CompositeKey     string
	BackgroundAppKey string

	// MaxPerType overrides the declared instance limit per view type.
	MaxPerType map[string]int
}

// DefaultSettings returns the built-in tunables.
func DefaultSettings() Settings {
	return Settings{
		Mode:             ModeWall,
		SingleYPercent:   2.0 / 3.0,
		MasterScale:      1,
		MinSize:          100,
		DefaultSize:      400,
		AnimDuration:     350 * time.Millisecond,
		Padding:          5,
		GatherJitter:     300,
		RemovalTimeout:   5 * time.Second,
		ExitDelay:        2 * time.Second,
		DarkenerOpacity:  0.8,
		CompositeAspectX: 16,
		CompositeAspectY: 9,
		CompositeKey:     "composite",
	}
}

func (s Settings) scale() float64 {
	if s.MasterScale <= 0 {
		return 1
	}
	return s.MasterScale
}
