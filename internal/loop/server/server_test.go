package server

import (
	"bytes"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/asteroid-waves/internal/loop/config"
	"github.com/tomz197/asteroid-waves/internal/object"
	"github.com/tomz197/asteroid-waves/internal/physics"
	"github.com/tomz197/asteroid-waves/internal/wave"
)

func newTestServer(t *testing.T, spawnPoints int) *Server {
	t.Helper()
	return NewServer(Options{
		Wave:        wave.DefaultSettings(),
		SpawnPoints: spawnPoints,
		Logger:      log.New(io.Discard),
		Seed:        1,
	})
}

// waveAsteroids returns the live, wave-spawned asteroids in the world.
func waveAsteroids(s *Server) []*object.Asteroid {
	var out []*object.Asteroid
	for _, a := range object.FilterAsteroids(s.world.Objects) {
		if !a.Fragment {
			out = append(out, a)
		}
	}
	return out
}

// shoot drops a projectile on top of a and runs a zero-length frame so it connects.
func shoot(s *Server, a *object.Asteroid, ownerID int) {
	a.SpawnProtection = 0
	s.world.AddObject(object.NewProjectile(a.X, a.Y, 0, 0, 0, ownerID))
	s.Step(0)
}

func TestStartBeginsFirstWave(t *testing.T) {
	s := newTestServer(t, 8)
	s.Start()
	s.Step(config.ServerTickTime)

	snap := s.GetSnapshot()
	if snap.Wave.Wave != 1 {
		t.Fatalf("expected wave 1, got %d", snap.Wave.Wave)
	}
	if snap.Wave.SpawnPoints != 8 {
		t.Fatalf("expected 8 registered spawn points, got %d", snap.Wave.SpawnPoints)
	}

	// 25 tokens buys five large asteroids
	if snap.Wave.ActiveEnemies != 5 {
		t.Fatalf("expected 5 active asteroids, got %d", snap.Wave.ActiveEnemies)
	}
	if snap.Wave.AvailableTokens != 0 {
		t.Fatalf("expected all tokens spent, got %d", snap.Wave.AvailableTokens)
	}
	if snap.Asteroids != 5 {
		t.Fatalf("expected 5 asteroids in snapshot, got %d", snap.Asteroids)
	}
	if s.Status() != snap.Wave {
		t.Fatalf("Status() and snapshot disagree: %+v vs %+v", s.Status(), snap.Wave)
	}
}

func TestProjectileHitReportsDefeat(t *testing.T) {
	s := newTestServer(t, 8)
	s.Start()
	handle := s.RegisterClient("alice")
	s.Step(config.ServerTickTime)

	targets := waveAsteroids(s)
	if len(targets) == 0 {
		t.Fatalf("expected wave asteroids after first step")
	}
	target := targets[0]
	shoot(s, target, handle.ID)

	if !target.IsDestroyed() {
		t.Fatalf("expected target to be destroyed")
	}

	snap := s.GetSnapshot()
	if snap.Wave.KilledThisWave != 1 || snap.Wave.TotalKilled != 1 {
		t.Fatalf("expected one recorded kill, got %+v", snap.Wave)
	}
	if snap.Wave.ActiveEnemies != 4 {
		t.Fatalf("expected 4 active asteroids, got %d", snap.Wave.ActiveEnemies)
	}

	select {
	case ev := <-handle.EventsCh:
		if ev.Type != EventScoreAdd || ev.ScoreAdd != config.ScoreLargeAsteroid {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatalf("expected score event")
	}

	if len(snap.TopScores) != 1 || snap.TopScores[0].Username != "alice" {
		t.Fatalf("expected alice on the leaderboard, got %+v", snap.TopScores)
	}
}

func TestFragmentsDoNotCountAsKills(t *testing.T) {
	s := newTestServer(t, 8)
	s.Start()
	s.Step(config.ServerTickTime)

	shoot(s, waveAsteroids(s)[0], 0)
	// The destroyed rock splits on the following frame
	s.Step(0)

	var fragment *object.Asteroid
	for _, a := range object.FilterAsteroids(s.world.Objects) {
		if a.Fragment {
			fragment = a
			break
		}
	}
	if fragment == nil {
		t.Fatalf("expected a fragment after destroying a large asteroid")
	}

	shoot(s, fragment, 0)

	if got := s.GetSnapshot().Wave.TotalKilled; got != 1 {
		t.Fatalf("expected fragment kill to be ignored, total killed %d", got)
	}
}

func TestWaveAdvancesAfterClear(t *testing.T) {
	s := newTestServer(t, 8)
	s.Start()
	s.Step(config.ServerTickTime)

	targets := waveAsteroids(s)
	if len(targets) != 5 {
		t.Fatalf("expected 5 wave asteroids, got %d", len(targets))
	}

	// Four of five meets the 0.75 threshold
	for _, a := range targets[:4] {
		shoot(s, a, 0)
	}

	snap := s.GetSnapshot()
	if !snap.Wave.AdvancePending {
		t.Fatalf("expected an advance to be scheduled, got %+v", snap.Wave)
	}
	if snap.Wave.Wave != 1 {
		t.Fatalf("wave advanced before its delay, got %d", snap.Wave.Wave)
	}

	s.Step(config.WaveAdvanceDelay)

	snap = s.GetSnapshot()
	if snap.Wave.Wave != 2 {
		t.Fatalf("expected wave 2 after the delay, got %d", snap.Wave.Wave)
	}
	if snap.Wave.AdvancePending {
		t.Fatalf("advance still pending after it fired")
	}
	if snap.Wave.TokenBudget != 27 {
		t.Fatalf("expected budget to grow to 27, got %d", snap.Wave.TokenBudget)
	}
	if snap.Wave.SpawnedThisWave != 5 {
		t.Fatalf("expected 5 spawns in wave 2, got %d", snap.Wave.SpawnedThisWave)
	}
}

func TestRestartClearsAsteroids(t *testing.T) {
	s := newTestServer(t, 8)
	s.Start()
	s.Step(config.ServerTickTime)
	shoot(s, waveAsteroids(s)[0], 0)
	s.Step(0)

	s.Start()
	s.Step(0)

	snap := s.GetSnapshot()
	if snap.Wave.Wave != 1 || snap.Wave.TotalKilled != 0 {
		t.Fatalf("expected a fresh session, got %+v", snap.Wave)
	}
	if snap.Asteroids != snap.Wave.ActiveEnemies {
		t.Fatalf("expected only fresh wave asteroids, got %d asteroids for %d active",
			snap.Asteroids, snap.Wave.ActiveEnemies)
	}
	if snap.Wave.SpawnPoints != 8 {
		t.Fatalf("spawn points registered twice: %d", snap.Wave.SpawnPoints)
	}
}

func TestRestartDropsQueuedAsteroids(t *testing.T) {
	s := newTestServer(t, 8)
	s.Start()
	s.Start()
	s.Step(config.ServerTickTime)

	snap := s.GetSnapshot()
	if snap.Wave.ActiveEnemies != 5 {
		t.Fatalf("expected 5 active asteroids, got %d", snap.Wave.ActiveEnemies)
	}
	if snap.Asteroids != snap.Wave.ActiveEnemies {
		t.Fatalf("untracked asteroids survived the restart: %d in world, %d active",
			snap.Asteroids, snap.Wave.ActiveEnemies)
	}
}

func TestStallLoggedOncePerWave(t *testing.T) {
	var buf bytes.Buffer
	s := NewServer(Options{
		Wave:   wave.DefaultSettings(),
		Logger: log.New(&buf),
		Seed:   1,
	})
	s.Start()
	for i := 0; i < 5; i++ {
		s.Step(config.ServerTickTime)
	}

	if !s.GetSnapshot().Wave.Stalled {
		t.Fatalf("expected a server without spawn points to stall")
	}
	if n := strings.Count(buf.String(), "wave stalled"); n != 1 {
		t.Fatalf("expected stall to be logged once, got %d\n%s", n, buf.String())
	}
}

func TestSpawnPlayerPlacement(t *testing.T) {
	s := newTestServer(t, 0)
	handle := s.RegisterClient("bob")
	s.Step(0)

	s.SpawnPlayer(handle.ID)
	player := s.GetClientPlayer(handle.ID)
	if player == nil {
		t.Fatalf("expected player after SpawnPlayer")
	}
	if player.OwnerID != handle.ID || player.Username != "bob" {
		t.Fatalf("player not tagged with its client: %+v", player)
	}

	s.RemovePlayer(handle.ID)
	if s.GetClientPlayer(handle.ID) != nil {
		t.Fatalf("expected player removed")
	}
}

func TestSafeSpawnPositionAvoidsAsteroids(t *testing.T) {
	w := NewWorldState()
	w.World = object.Screen{Width: 200, Height: 200, CenterX: 100, CenterY: 100}
	w.AddObject(object.NewAsteroid(100, 100, object.AsteroidLarge, 0))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		x, y := w.safeSpawnPosition(rng, 20, 16)
		d := physics.WrappedDistanceSquared(x, y, 100, 100, 200, 200)
		if d < 20*20 {
			t.Fatalf("spawn (%.1f, %.1f) within 20 of the asteroid", x, y)
		}
	}
}

func TestUnregisterRemovesClient(t *testing.T) {
	s := newTestServer(t, 0)
	handle := s.RegisterClient("carol")
	s.Step(0)
	s.SpawnPlayer(handle.ID)

	s.UnregisterClient(handle.ID)
	s.Step(time.Millisecond)

	if _, ok := <-handle.EventsCh; ok {
		t.Fatalf("expected events channel closed after unregister")
	}
	if n := len(s.GetSnapshot().UserObjects); n != 0 {
		t.Fatalf("expected no players left, got %d", n)
	}
}
