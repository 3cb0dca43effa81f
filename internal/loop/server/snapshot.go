package server

import (
	"cmp"
	"slices"
	"time"

	"github.com/tomz197/asteroid-waves/internal/loop/config"
	"github.com/tomz197/asteroid-waves/internal/object"
	"github.com/tomz197/asteroid-waves/internal/wave"
)

// WorldSnapshot is an immutable view of one tick, shared by every client.
type WorldSnapshot struct {
	Objects     []object.Object
	UserObjects []*object.User
	Players     int // Connected clients, alive or not
	World       object.Screen
	Delta       time.Duration
	Wave        wave.Status
	Asteroids   int // Live asteroids including fragments
	TopScores   []TopScoreEntry
}

// TopScoreEntry is one leaderboard row.
type TopScoreEntry struct {
	Username string
	Score    int
	clientID int // Breaks ties so the order is stable
}

// createSnapshot publishes the world as it stands after this tick. Object slices
// alternate between two buffers so steady state allocates nothing.
func (s *Server) createSnapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.snapshotBufs[s.snapshotIdx]
	buf = append(buf[:0], s.world.Objects...)
	s.snapshotBufs[s.snapshotIdx] = buf
	s.snapshotIdx ^= 1

	s.snapshot.Store(&WorldSnapshot{
		Objects:     buf,
		UserObjects: object.FilterUsers(buf),
		Players:     len(s.clients),
		World:       s.world.World,
		Delta:       s.world.Delta,
		Wave:        s.waves.Status(),
		Asteroids:   len(object.FilterAsteroids(buf)),
		TopScores:   s.topScores(),
	})
}

// topScores ranks clients with a positive score, best first. mu must be held.
func (s *Server) topScores() []TopScoreEntry {
	var entries []TopScoreEntry
	for _, handle := range s.clients {
		if handle.Score > 0 {
			entries = append(entries, TopScoreEntry{Username: handle.Username, Score: handle.Score, clientID: handle.ID})
		}
	}
	slices.SortFunc(entries, func(a, b TopScoreEntry) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(a.clientID, b.clientID))
	})
	if len(entries) > config.LeaderboardSize {
		entries = entries[:config.LeaderboardSize]
	}
	return entries
}
