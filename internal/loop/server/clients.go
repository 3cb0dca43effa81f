package server

import (
	"github.com/tomz197/asteroid-waves/internal/loop/config"
	"github.com/tomz197/asteroid-waves/internal/object"
)

// ClientHandle is the server's record of one connected client.
type ClientHandle struct {
	ID             int
	Username       string
	Player         *object.User // Nil while dead or not yet spawned
	Input          object.Input // Latest input received
	EventsCh       chan ClientEvent
	InvincibleTime float64 // Seconds of spawn invincibility left
	Score          int     // Points since the client's last full restart
}

// ClientInput is one input frame from a client.
type ClientInput struct {
	ClientID int
	Input    object.Input
}

// ClientEventType identifies a ClientEvent.
type ClientEventType int

const (
	EventPlayerDied ClientEventType = iota
	EventScoreAdd
	EventServerShutdown
)

// ClientEvent is pushed from the server to a single client.
type ClientEvent struct {
	Type     ClientEventType
	KilledBy string
	ScoreAdd int
}

// RegisterClient allocates an ID for a new client. It joins the world on the next tick.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
	}
	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client and its ship on the next tick, then closes its events.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// SendInput queues a client's input for the next tick. Input is dropped when the queue is full.
func (s *Server) SendInput(clientID int, input object.Input) {
	select {
	case s.inputChan <- ClientInput{ClientID: clientID, Input: input}:
	default:
	}
}

// GetClientPlayer returns the client's ship, or nil.
func (s *Server) GetClientPlayer(clientID int) *object.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if handle, ok := s.clients[clientID]; ok {
		return handle.Player
	}
	return nil
}

// SpawnPlayer gives the client a fresh ship away from asteroids, replacing any it has.
func (s *Server) SpawnPlayer(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.clients[clientID]
	if !ok {
		return
	}
	if handle.Player != nil {
		s.world.removeObject(handle.Player)
	}

	x, y := s.world.safeSpawnPosition(s.rng, config.SafeSpawnDistance, config.SafeSpawnAttempts)
	ship := object.NewUser(x, y)
	ship.OwnerID = clientID
	ship.Username = handle.Username

	handle.Player = ship
	handle.InvincibleTime = config.InvincibilitySeconds
	s.world.AddObject(ship)
	s.logger.Debug("player spawned", "client", clientID, "user", handle.Username)
}

// RemovePlayer takes the client's ship out of the world.
func (s *Server) RemovePlayer(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if handle, ok := s.clients[clientID]; ok && handle.Player != nil {
		s.world.removeObject(handle.Player)
		handle.Player = nil
	}
}

// ResetScore zeroes a client's leaderboard score.
func (s *Server) ResetScore(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if handle, ok := s.clients[clientID]; ok {
		handle.Score = 0
	}
}

// processRegistrations applies queued joins and leaves.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
			s.logger.Info("client joined", "client", handle.ID, "user", handle.Username)
		case id := <-s.unregisterCh:
			s.mu.Lock()
			s.dropClientLocked(id)
			s.mu.Unlock()
		default:
			return
		}
	}
}

// dropClientLocked forgets a client and removes its ship. mu must be held.
func (s *Server) dropClientLocked(id int) {
	handle, ok := s.clients[id]
	if !ok {
		return
	}
	if handle.Player != nil {
		s.world.removeObject(handle.Player)
	}
	close(handle.EventsCh)
	delete(s.clients, id)
	s.logger.Info("client left", "client", id, "user", handle.Username)
}

// collectInputs stores the newest queued input on each client's handle.
func (s *Server) collectInputs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		select {
		case ci := <-s.inputChan:
			if handle, ok := s.clients[ci.ClientID]; ok {
				handle.Input = ci.Input
			}
		default:
			return
		}
	}
}

// notify delivers ev without blocking; a client that has stopped reading loses it.
func (s *Server) notify(handle *ClientHandle, ev ClientEvent) {
	select {
	case handle.EventsCh <- ev:
	default:
	}
}
