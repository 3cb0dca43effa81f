// Package config centralizes all tunable game parameters.
package config

import "time"

// View resolution - the visible viewport in logical units.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 120 // Logical viewport width
	ViewHeight = 80  // Logical viewport height (in sub-pixels, so 40 terminal rows)
)

// World dimensions - the total game area (larger than viewport).
// Ship stays centered while the camera follows it.
const (
	WorldWidth  = 400 // Total world width
	WorldHeight = 300 // Total world height
)

// Scoring
const (
	ScoreLargeAsteroid  = 20
	ScoreMediumAsteroid = 50
	ScoreSmallAsteroid  = 100
	LeaderboardSize     = 5 // Entries shown in the stats panel
)

// Player
const (
	InitialLives          = 3
	InvincibilitySeconds  = 3.0
	RespawnTimeoutSeconds = 2.0
	SafeSpawnDistance     = 20.0 // Preferred clearance from asteroids when placing a ship
	SafeSpawnAttempts     = 16
	PlayerBlinkFrequency  = 10.0 // Hz
	MaxUsernameLength     = 16   // Maximum display length for player usernames
)

// Waves
const (
	SpawnPointCount        = 8    // Spawn points placed around the world
	WaveStartingTokens     = 25   // Tokens added at the start of the first wave
	WaveTokenGrowth        = 1.1  // Budget multiplier per wave
	WaveKillThreshold      = 0.75 // Fraction of a wave to destroy before it can end
	WaveMaxActiveAsteroids = 40   // Live wave-spawned asteroids allowed at once
	WaveAdvanceDelay       = time.Second
	WaveLowTokenThreshold  = 10  // Waves only end once unspent tokens drop below this
	WaveBannerSeconds      = 2.5 // How long the "WAVE n" banner stays on screen
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	MaxTermWidth          = 240 // Larger terminals get a centered, bordered render area
	MaxTermHeight         = 80
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Server tick rate
const (
	ServerTickRate = 60
	ServerTickTime = time.Second / ServerTickRate
)
