package client

import (
	"strings"
	"testing"
	"time"

	"github.com/tomz197/asteroid-waves/internal/draw"
	"github.com/tomz197/asteroid-waves/internal/loop/config"
	"github.com/tomz197/asteroid-waves/internal/loop/server"
	"github.com/tomz197/asteroid-waves/internal/object"
	"github.com/tomz197/asteroid-waves/internal/wave"
)

func TestClampTermSize(t *testing.T) {
	tests := []struct {
		name                   string
		termW, termH           int
		wantW, wantH           int
		wantOffCol, wantOffRow int
	}{
		{"fits", 100, 40, 100, 40, 0, 0},
		{"too wide", config.MaxTermWidth + 20, 40, config.MaxTermWidth, 40, 10, 0},
		{"too tall", 100, config.MaxTermHeight + 11, 100, config.MaxTermHeight, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, oc, or := clampTermSize(tt.termW, tt.termH)
			if w != tt.wantW || h != tt.wantH || oc != tt.wantOffCol || or != tt.wantOffRow {
				t.Fatalf("clampTermSize(%d, %d) = %d,%d,%d,%d, want %d,%d,%d,%d",
					tt.termW, tt.termH, w, h, oc, or,
					tt.wantW, tt.wantH, tt.wantOffCol, tt.wantOffRow)
			}
		})
	}
}

func TestTrackWaveShowsBannerOnChange(t *testing.T) {
	s := NewClientState()

	s.trackWave(0, 0.1)
	if s.bannerTime != 0 {
		t.Fatalf("banner shown before the first wave")
	}

	s.trackWave(1, 0.1)
	if s.bannerTime != config.WaveBannerSeconds {
		t.Fatalf("expected banner for wave 1, got %.2f", s.bannerTime)
	}

	s.trackWave(1, 1.0)
	if want := config.WaveBannerSeconds - 1.0; s.bannerTime != want {
		t.Fatalf("expected banner to tick down to %.2f, got %.2f", want, s.bannerTime)
	}

	s.trackWave(1, 10)
	if s.bannerTime != 0 {
		t.Fatalf("expected banner to expire, got %.2f", s.bannerTime)
	}

	s.trackWave(2, 0.1)
	if s.bannerTime != config.WaveBannerSeconds {
		t.Fatalf("expected banner for wave 2, got %.2f", s.bannerTime)
	}
}

func TestToggleStatsOnPressOnly(t *testing.T) {
	s := NewClientState()

	s.toggleStats(true)
	if !s.ShowStats {
		t.Fatalf("expected stats shown after TAB")
	}
	// Held key must not flip it back
	s.toggleStats(true)
	s.toggleStats(true)
	if !s.ShowStats {
		t.Fatalf("holding TAB toggled the panel")
	}

	s.toggleStats(false)
	s.toggleStats(true)
	if s.ShowStats {
		t.Fatalf("expected second press to hide stats")
	}
}

func TestStatsLines(t *testing.T) {
	snap := &server.WorldSnapshot{
		Wave: wave.Status{
			Wave:             3,
			TokenBudget:      30,
			AvailableTokens:  4,
			ActiveEnemies:    7,
			MaxActiveEnemies: 40,
			Stalled:          true,
		},
		TopScores: []server.TopScoreEntry{
			{Username: "alice", Score: 500},
			{Username: "averyveryverylongname", Score: 100},
		},
	}

	lines := statsLines(snap, "alice")
	joined := strings.Join(lines, "\n")

	for _, want := range []string{"Wave               3", "Tokens      4 /   30", "Spawning stalled", "Top scores"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in panel:\n%s", want, joined)
		}
	}
	if !strings.Contains(joined, ">1 alice") {
		t.Fatalf("expected own entry marked:\n%s", joined)
	}
	if strings.Contains(joined, "averyveryverylongname") {
		t.Fatalf("expected long names truncated:\n%s", joined)
	}
}

func TestIdleWarnsThenDisconnects(t *testing.T) {
	s := NewClientState()

	if s.idleFor(time.Second) || s.isInactive {
		t.Fatalf("fresh client flagged idle")
	}
	warn := time.Duration(config.InactivityWarnUser+1) * time.Second
	if s.idleFor(warn) || !s.isInactive {
		t.Fatalf("expected warning without disconnect after %v", warn)
	}
	drop := time.Duration(config.InactivityDisconnectUser+1) * time.Second
	if !s.idleFor(drop) {
		t.Fatalf("expected disconnect after %v", drop)
	}
	if s.idleFor(0) || s.isInactive {
		t.Fatalf("activity did not clear the warning")
	}
}

func TestApplyEvents(t *testing.T) {
	s := NewClientState()
	s.GameState = GameStatePlaying

	s.applyEvent(server.ClientEvent{Type: server.EventScoreAdd, ScoreAdd: 50})
	s.applyEvent(server.ClientEvent{Type: server.EventScoreAdd, ScoreAdd: 20})
	if s.Score != 70 {
		t.Fatalf("expected score 70, got %d", s.Score)
	}

	s.applyEvent(server.ClientEvent{Type: server.EventPlayerDied})
	if s.GameState != GameStateDead || s.Lives != config.InitialLives-1 {
		t.Fatalf("expected death to cost a life, got state %d lives %d", s.GameState, s.Lives)
	}
	if s.RespawnTimeRemaining != config.RespawnTimeoutSeconds {
		t.Fatalf("expected respawn timeout, got %.2f", s.RespawnTimeRemaining)
	}

	s.applyEvent(server.ClientEvent{Type: server.EventServerShutdown})
	if s.GameState != GameStateShutdown {
		t.Fatalf("expected shutdown state, got %d", s.GameState)
	}
	s.tick(config.ShutdownDisplaySeconds + 1)
	if s.Running {
		t.Fatalf("expected client to stop after the shutdown notice")
	}
}

func TestRespawnWaitsForTimeout(t *testing.T) {
	s := NewClientState()
	s.GameState = GameStateDead
	s.RespawnTimeRemaining = config.RespawnTimeoutSeconds
	s.Input.Space = true

	if s.wantsSpawn() {
		t.Fatalf("respawn allowed before the timeout")
	}
	s.tick(config.RespawnTimeoutSeconds)
	if !s.wantsSpawn() {
		t.Fatalf("expected respawn once the timeout passed")
	}

	s.Lives = 2
	s.Score = 300
	if s.beginLife() {
		t.Fatalf("respawn with lives left restarted the run")
	}
	if s.Score != 300 || s.GameState != GameStatePlaying || s.InvincibleTime != config.InvincibilitySeconds {
		t.Fatalf("unexpected state after respawn: %+v", s)
	}
}

func TestBeginLifeAfterGameOver(t *testing.T) {
	s := NewClientState()
	s.GameState = GameStateDead
	s.Lives = 0
	s.Score = 900

	if !s.beginLife() {
		t.Fatalf("expected a fresh run after the last life")
	}
	if s.Score != 0 || s.Lives != config.InitialLives {
		t.Fatalf("run not reset: score %d lives %d", s.Score, s.Lives)
	}
}

func TestFollowMovesCamera(t *testing.T) {
	s := NewClientState()
	s.follow(object.NewUser(12, 34))
	if s.Camera.X != 12 || s.Camera.Y != 34 {
		t.Fatalf("camera at (%.0f,%.0f), want (12,34)", s.Camera.X, s.Camera.Y)
	}
	s.follow(nil)
	if s.Player != nil || s.Camera.X != 12 {
		t.Fatalf("losing the ship should keep the camera in place")
	}
}

func TestMinimapCell(t *testing.T) {
	tests := []struct {
		top, bottom byte
		want        rune
		self        bool
	}{
		{mapEmpty, mapEmpty, ' ', false},
		{mapOther, mapEmpty, draw.BlockUpperHalf, false},
		{mapEmpty, mapSelf, draw.BlockLowerHalf, true},
		{mapSelf, mapOther, draw.BlockFull, true},
	}
	for _, tt := range tests {
		r, self := minimapCell(tt.top, tt.bottom)
		if r != tt.want || self != tt.self {
			t.Errorf("minimapCell(%d, %d) = %q,%v want %q,%v", tt.top, tt.bottom, r, self, tt.want, tt.self)
		}
	}
}

func TestPlotMinimapSelfWins(t *testing.T) {
	s := NewClientState()
	world := object.Screen{Width: 240, Height: 120}

	me := object.NewUser(5, 5)
	other := object.NewUser(6, 6)
	edge := object.NewUser(240, 120)
	s.Player = me

	s.plotMinimap([]*object.User{other, me, edge}, world)

	if got := s.minimapGrid[0][0]; got != mapSelf {
		t.Fatalf("expected own ship to win its cell, got %d", got)
	}
	if got := s.minimapGrid[minimapSubRows-1][minimapWidth-1]; got != mapOther {
		t.Fatalf("expected ship on the far edge clamped into the last cell, got %d", got)
	}
}

func TestShutdownCountdownRoundsUp(t *testing.T) {
	joined := strings.Join(shutdownLines(2.4), "\n")
	if !strings.Contains(joined, "Disconnecting in 3 seconds") {
		t.Fatalf("unexpected shutdown notice:\n%s", joined)
	}
	if w := blockWidth(titleArt); w == 0 || w > config.MaxTermWidth {
		t.Fatalf("title art width %d", w)
	}
}
