// Package server owns the shared world. One goroutine steps the simulation at a
// fixed rate and publishes immutable snapshots that every client renders from.
package server

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/asteroid-waves/internal/loop/config"
	"github.com/tomz197/asteroid-waves/internal/object"
	"github.com/tomz197/asteroid-waves/internal/timer"
	"github.com/tomz197/asteroid-waves/internal/wave"
)

// GameServer is what a client needs from the server.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	SendInput(clientID int, input object.Input)
	GetSnapshot() *WorldSnapshot
	GetClientPlayer(clientID int) *object.User
	SpawnPlayer(clientID int)
	RemovePlayer(clientID int)
	ResetScore(clientID int)
}

var _ GameServer = (*Server)(nil)

// Server runs the authoritative simulation.
type Server struct {
	mu       sync.RWMutex
	world    *WorldState
	snapshot atomic.Pointer[WorldSnapshot]

	clients      map[int]*ClientHandle
	nextClientID int
	inputChan    chan ClientInput
	registerCh   chan *ClientHandle
	unregisterCh chan int

	// Scratch state reused every tick
	snapshotBufs [2][]object.Object
	snapshotIdx  int
	toRemove     map[object.Object]struct{}
	ships        map[object.Object]struct{}

	// The controller and its timers are only touched with mu held
	waves       *wave.Controller
	timers      *timer.Manager
	settings    wave.Settings
	spawnPoints []*object.SpawnPoint
	started     bool
	stallWave   int // Last wave a stall was logged for

	rng    *rand.Rand
	logger *log.Logger
}

// Options configures a Server.
type Options struct {
	Wave        wave.Settings
	SpawnPoints int         // Placed evenly around the world
	Logger      *log.Logger // Nil uses the default logger
	Seed        int64       // Player placement seed; 0 seeds from the clock
}

// DefaultOptions returns the options built from the config constants.
func DefaultOptions() Options {
	return Options{
		Wave: wave.Settings{
			StartingTokens:    config.WaveStartingTokens,
			GrowthFactor:      config.WaveTokenGrowth,
			KillThreshold:     config.WaveKillThreshold,
			MaxActiveEnemies:  config.WaveMaxActiveAsteroids,
			AdvanceDelay:      config.WaveAdvanceDelay,
			LowTokenThreshold: config.WaveLowTokenThreshold,
		},
		SpawnPoints: config.SpawnPointCount,
	}
}

// NewServer builds an idle server. Nothing spawns until Start or Run.
func NewServer(opts Options) *Server {
	world := NewWorldState()
	world.World = object.Screen{
		Width:   config.WorldWidth,
		Height:  config.WorldHeight,
		CenterX: config.WorldWidth / 2,
		CenterY: config.WorldHeight / 2,
	}
	world.Screen = world.World
	world.InitGrids()

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	timers := timer.NewManager()

	s := &Server{
		world:        world,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		inputChan:    make(chan ClientInput, 256),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
		toRemove:     make(map[object.Object]struct{}),
		ships:        make(map[object.Object]struct{}),
		waves:        wave.NewController(timers, logger),
		timers:       timers,
		settings:     opts.Wave,
		spawnPoints:  object.NewSpawnRing(world.World, opts.SpawnPoints, world),
		rng:          rand.New(rand.NewSource(opts.Seed)),
		logger:       logger.WithPrefix("server"),
	}
	s.snapshot.Store(&WorldSnapshot{
		Objects: []object.Object{},
		World:   world.World,
		Wave:    s.waves.Status(),
	})
	return s
}

// Start begins wave 1. The first call also places the spawn points; later calls
// clear every asteroid and restart the session.
func (s *Server) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.world.clearAsteroids()
	} else {
		registered := 0
		for _, p := range s.spawnPoints {
			s.world.AddObject(p)
			if s.waves.RegisterSpawnerPoint(p) {
				registered++
			}
		}
		s.started = true
		s.logger.Info("spawn points placed", "count", registered)
	}

	s.stallWave = 0
	if !s.waves.Start(s.settings) {
		s.logger.Warn("first wave spawned partially", "status", s.waves.Status())
	}
}

// Run starts the session and steps the world every tick until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.Start()

	tick := time.NewTicker(config.ServerTickTime)
	defer tick.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			s.Step(now.Sub(last))
			last = now
		}
	}
}

// Step advances the world by delta and publishes a new snapshot.
func (s *Server) Step(delta time.Duration) {
	s.world.Delta = delta
	s.processRegistrations()
	s.collectInputs()
	s.updateWorld()
	s.createSnapshot()
}

// Shutdown tells every client the server is going away, then waits until they
// have all disconnected or timeout passes. Cancel Run's context afterwards.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		s.notify(handle, ClientEvent{Type: EventServerShutdown})
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	poll := time.NewTicker(200 * time.Millisecond)
	defer poll.Stop()

	for s.clientCount() > 0 {
		select {
		case <-deadline:
			return
		case <-poll.C:
		}
	}
}

func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// GetSnapshot returns the latest published snapshot. It never returns nil.
func (s *Server) GetSnapshot() *WorldSnapshot {
	return s.snapshot.Load()
}

// Status returns the wave controller state from the latest snapshot.
func (s *Server) Status() wave.Status {
	return s.snapshot.Load().Wave
}
