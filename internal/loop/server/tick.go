package server

import "github.com/tomz197/asteroid-waves/internal/object"

// updateWorld runs one simulation tick: due wave timers, ships with their
// owners' input, every other object, then collisions.
func (s *Server) updateWorld() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Due advances spawn before this tick's updates
	s.timers.Advance(s.world.Delta)

	dt := s.world.Delta.Seconds()
	ctx := object.UpdateContext{
		Delta:   s.world.Delta,
		Screen:  s.world.Screen,
		Spawner: s.world,
	}

	clear(s.ships)
	for _, handle := range s.clients {
		handle.InvincibleTime = max(0, handle.InvincibleTime-dt)
		if handle.Player == nil {
			continue
		}
		s.ships[handle.Player] = struct{}{}

		ctx.Input = handle.Input
		if remove, _ := handle.Player.Update(ctx); remove {
			handle.Player = nil
		}
	}

	ctx.Input = object.Input{}
	s.world.updateObjects(ctx, s.ships)
	s.world.FlushSpawned()

	s.checkCollisions()
	s.checkStall()
}
// checkStall logs once per wave when the wave controller can no longer progress.
func (s *Server) checkStall() {
	if !s.waves.Stalled() {
		return
	}
	n := s.waves.WaveNumber()
	if s.stallWave == n {
		return
	}
	s.stallWave = n
	st := s.waves.Status()
	s.logger.Warn("wave stalled",
		"wave", st.Wave,
		"available", st.AvailableTokens,
		"spawnPoints", st.SpawnPoints,
		"maxActive", st.MaxActiveEnemies)
}

// checkCollisions resolves this tick's hits: shots against asteroids, shots
// against each other, asteroid bounces and finally ships.
func (s *Server) checkCollisions() {
	cs := s.world.collisions
	cs.index(s.world.Objects)

	cs.projectileHits(s.creditKill)
	cs.cancelProjectiles()
	cs.bounceAsteroids()

	clear(s.toRemove)
	for _, handle := range s.clients {
		if handle.Player == nil || handle.InvincibleTime > 0 {
			continue
		}
		if cs.shipHit(handle.Player, handle.ID) {
			s.killPlayer(handle)
		}
	}
	s.world.removeObjects(s.toRemove)
}

// creditKill reports a destroyed asteroid to the wave controller and pays the shooter.
func (s *Server) creditKill(p *object.Projectile, a *object.Asteroid) {
	// Fragments were never registered; the controller ignores them
	s.waves.ReportEnemyDefeated(a)

	handle, ok := s.clients[p.OwnerID]
	if !ok {
		return
	}
	points := asteroidScore(a.Size)
	handle.Score += points
	s.notify(handle, ClientEvent{Type: EventScoreAdd, ScoreAdd: points})
}

// killPlayer blows up the client's ship and schedules it for removal.
func (s *Server) killPlayer(handle *ClientHandle) {
	x, y := handle.Player.GetPosition()
	object.SpawnExplosion(x, y, 20, 25.0, 1.0, s.world)

	s.toRemove[handle.Player] = struct{}{}
	handle.Player = nil
	s.notify(handle, ClientEvent{Type: EventPlayerDied})
}
