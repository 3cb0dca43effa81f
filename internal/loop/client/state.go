package client

import (
	"time"

	"github.com/tomz197/asteroid-waves/internal/loop/config"
	"github.com/tomz197/asteroid-waves/internal/loop/server"
	"github.com/tomz197/asteroid-waves/internal/object"
)

// GameState represents the current game phase for a client.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen
	GameStatePlaying                   // Active gameplay
	GameStateDead                      // Player died, show restart prompt
	GameStateShutdown                  // Server is shutting down
)

// Minimap dimensions in terminal cells. Each row holds two sub-rows via half blocks.
const (
	minimapWidth   = 24
	minimapHeight  = 6
	minimapSubRows = minimapHeight * 2
)

// ClientState holds per-player state (input, score, camera, etc.).
// Each client has their own instance, managed by the Client.
type ClientState struct {
	Input                object.Input
	View                 object.Screen // Viewport dimensions (can vary per client)
	Camera               object.Camera // Camera position (follows this client's player)
	GameState            GameState     // This client's game phase
	Player               *object.User  // Reference to this client's ship (from server)
	Score                int           // This client's score
	Lives                int           // This client's remaining lives
	InvincibleTime       float64       // Remaining invincibility time in seconds
	RespawnTimeRemaining float64       // Seconds before the dead screen accepts a respawn
	ShowStats            bool          // Wave details panel toggled with TAB
	Running              bool          // Client loop running
	delta                time.Duration // Frame delta time (client-side)
	shutdownTimer        float64       // Countdown before auto-disconnect on shutdown
	isInactive           bool          // Whether the client is in inactive warning state

	// Previous-frame values, used to detect transitions that need a full redraw
	prevGameState GameState
	wasInactive   bool
	prevTab       bool

	// Wave banner
	lastWave   int     // Last wave number seen in a snapshot
	bannerTime float64 // Remaining seconds to show the "WAVE n" banner

	minimapGrid [minimapSubRows][minimapWidth]byte // Reused each frame
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		GameState: GameStateStart,
		Lives:     config.InitialLives,
		Running:   true,
	}
}

// trackWave starts the banner whenever the observed wave number changes and
// ticks it down otherwise.
func (s *ClientState) trackWave(wave int, dt float64) {
	if wave != s.lastWave {
		s.lastWave = wave
		if wave > 0 {
			s.bannerTime = config.WaveBannerSeconds
			return
		}
	}
	countdown(&s.bannerTime, dt)
}

// toggleStats flips the stats panel on the frame TAB goes down.
func (s *ClientState) toggleStats(tab bool) {
	if tab && !s.prevTab {
		s.ShowStats = !s.ShowStats
	}
	s.prevTab = tab
}

// countdown subtracts dt from *t without letting it go negative.
func countdown(t *float64, dt float64) {
	if *t -= dt; *t < 0 {
		*t = 0
	}
}

// idleFor updates the inactivity warning from how long the client has been idle.
// It reports whether the client should be disconnected.
func (s *ClientState) idleFor(idle time.Duration) bool {
	secs := idle.Seconds()
	s.isInactive = secs > config.InactivityWarnUser
	return secs > config.InactivityDisconnectUser
}

// applyEvent folds one server event into the state.
func (s *ClientState) applyEvent(ev server.ClientEvent) {
	switch ev.Type {
	case server.EventPlayerDied:
		s.Lives--
		s.Player = nil
		s.GameState = GameStateDead
		s.RespawnTimeRemaining = config.RespawnTimeoutSeconds
	case server.EventScoreAdd:
		s.Score += ev.ScoreAdd
	case server.EventServerShutdown:
		s.GameState = GameStateShutdown
		s.shutdownTimer = config.ShutdownDisplaySeconds
	}
}

// tick advances the per-state timers by dt seconds.
func (s *ClientState) tick(dt float64) {
	switch s.GameState {
	case GameStatePlaying:
		countdown(&s.InvincibleTime, dt)
	case GameStateDead:
		countdown(&s.RespawnTimeRemaining, dt)
	case GameStateShutdown:
		if s.shutdownTimer -= dt; s.shutdownTimer <= 0 {
			s.Running = false
		}
	}
}

// wantsSpawn reports whether this frame's input should put a ship in the world.
func (s *ClientState) wantsSpawn() bool {
	if !s.Input.Space && !s.Input.Enter {
		return false
	}
	switch s.GameState {
	case GameStateStart:
		return true
	case GameStateDead:
		return s.RespawnTimeRemaining <= 0
	}
	return false
}

// beginLife moves into play, resetting score and lives when the run is over.
// It reports whether the run restarted from scratch.
func (s *ClientState) beginLife() (fresh bool) {
	fresh = s.GameState == GameStateStart || s.Lives <= 0
	if fresh {
		s.Score = 0
		s.Lives = config.InitialLives
	}
	s.InvincibleTime = config.InvincibilitySeconds
	s.GameState = GameStatePlaying
	return fresh
}

// follow points the camera at the player's ship, if there is one.
func (s *ClientState) follow(player *object.User) {
	s.Player = player
	if player != nil {
		s.Camera.X, s.Camera.Y = player.GetPosition()
	}
}
