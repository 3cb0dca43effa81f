package wave

import "time"

// Default tuning, matching the values the controller was balanced around.
const (
	DefaultStartingTokens    = 25
	DefaultGrowthFactor      = 1.1
	DefaultKillThreshold     = 0.75
	DefaultMaxActiveEnemies  = 30
	DefaultAdvanceDelay      = time.Second
	DefaultLowTokenThreshold = 10
)

// Settings configures a controller session.
type Settings struct {
	StartingTokens    int           // Token allotment added at the start of the first wave
	GrowthFactor      float64       // Budget multiplier applied after each wave advance
	KillThreshold     float64       // Fraction of a wave's spawns that must die before it can end
	MaxActiveEnemies  int           // Live enemy cap; <= 0 disables spawning
	AdvanceDelay      time.Duration // Delay between meeting the clear condition and the next wave
	LowTokenThreshold int           // A wave only ends once available tokens drop below this
}

// DefaultSettings returns the default tuning.
func DefaultSettings() Settings {
	return Settings{
		StartingTokens:    DefaultStartingTokens,
		GrowthFactor:      DefaultGrowthFactor,
		KillThreshold:     DefaultKillThreshold,
		MaxActiveEnemies:  DefaultMaxActiveEnemies,
		AdvanceDelay:      DefaultAdvanceDelay,
		LowTokenThreshold: DefaultLowTokenThreshold,
	}
}

// Normalize clamps out-of-range values. MaxActiveEnemies is left as given:
// a non-positive cap is a valid way to disable spawning.
func (s Settings) Normalize() Settings {
	if s.StartingTokens < 0 {
		s.StartingTokens = 0
	}
	if s.GrowthFactor < 0 {
		s.GrowthFactor = 0
	}
	if s.KillThreshold < 0 {
		s.KillThreshold = 0
	}
	if s.AdvanceDelay < 0 {
		s.AdvanceDelay = 0
	}
	if s.LowTokenThreshold < 0 {
		s.LowTokenThreshold = 0
	}
	return s
}
