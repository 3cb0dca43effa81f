package object

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tomz197/asteroid-waves/internal/draw"
	"github.com/tomz197/asteroid-waves/internal/wave"
)

// spawnSizes lists asteroid sizes from most to least expensive.
var spawnSizes = []AsteroidSize{AsteroidLarge, AsteroidMedium, AsteroidSmall}

// spawnFlashSeconds is how long a spawn point marker stays enlarged after spawning.
const spawnFlashSeconds = 0.4

// warpSparks is the number of particles marking each arrival.
const warpSparks = 8

// SpawnPoint is a fixed location that produces asteroids for the wave controller.
type SpawnPoint struct {
	X, Y       float64 // Position in world coordinates
	Aim        float64 // Base launch direction (radians)
	Spread     float64 // Max distance from the point a rock may appear at
	Protection float64 // Spawn protection granted to new asteroids (seconds)
	Disabled   bool    // Disabled points refuse to spawn

	sink    Spawner
	flash   float64 // Remaining marker flash time
	spawned int     // Asteroids produced by this point
}

// Compile-time check that SpawnPoint can be registered with the wave controller.
var _ wave.Spawner = (*SpawnPoint)(nil)

// NewSpawnPoint creates a spawn point at (x,y) that queues asteroids into sink.
func NewSpawnPoint(x, y, aim float64, sink Spawner) *SpawnPoint {
	return &SpawnPoint{
		X:          x,
		Y:          y,
		Aim:        aim,
		Spread:     4.0,
		Protection: 1.0,
		sink:       sink,
	}
}

// NewSpawnRing places n spawn points evenly on an ellipse inside the world,
// each aimed at the world center.
func NewSpawnRing(world Screen, n int, sink Spawner) []*SpawnPoint {
	if n <= 0 {
		return nil
	}
	cx := float64(world.Width) / 2
	cy := float64(world.Height) / 2
	rx := float64(world.Width) * 0.4
	ry := float64(world.Height) * 0.4

	points := make([]*SpawnPoint, n)
	for i := range points {
		angle := float64(i) * 2 * math.Pi / float64(n)
		x := cx + math.Cos(angle)*rx
		y := cy + math.Sin(angle)*ry
		points[i] = NewSpawnPoint(x, y, math.Atan2(cy-y, cx-x), sink)
	}
	return points
}

// SpawnEnemy queues the largest asteroid the budget affords and returns it with its cost.
func (p *SpawnPoint) SpawnEnemy(budget int) (wave.Enemy, int, error) {
	if p.Disabled || p.sink == nil {
		return nil, 0, wave.ErrSpawnUnavailable
	}

	size, ok := largestAffordable(budget)
	if !ok {
		return nil, 0, fmt.Errorf("budget %d below cheapest asteroid: %w", budget, wave.ErrSpawnUnavailable)
	}

	// Jitter inside the spread radius so consecutive rocks don't stack
	r := rand.Float64() * p.Spread
	theta := rand.Float64() * 2 * math.Pi
	x := p.X + math.Cos(theta)*r
	y := p.Y + math.Sin(theta)*r

	angle := p.Aim + (rand.Float64()-0.5)*math.Pi/2 // ±45° variation
	asteroid := NewAsteroid(x, y, size, angle)
	asteroid.SpawnProtection = p.Protection

	p.sink.Spawn(asteroid)
	SpawnWarp(x, y, warpSparks, p.sink)
	p.flash = spawnFlashSeconds
	p.spawned++

	return asteroid, AsteroidCost(size), nil
}

// Spawned returns how many asteroids this point has produced.
func (p *SpawnPoint) Spawned() int {
	return p.spawned
}

// largestAffordable picks the most expensive asteroid size within budget.
func largestAffordable(budget int) (AsteroidSize, bool) {
	for _, size := range spawnSizes {
		if AsteroidCost(size) <= budget {
			return size, true
		}
	}
	return 0, false
}

// Update ticks down the marker flash. Spawn points are never removed.
func (p *SpawnPoint) Update(ctx UpdateContext) (bool, error) {
	if p.flash > 0 {
		p.flash -= ctx.Delta.Seconds()
		if p.flash < 0 {
			p.flash = 0
		}
	}
	return false, nil
}

// Draw renders the spawn point as a small diamond, enlarged while flashing.
func (p *SpawnPoint) Draw(ctx DrawContext) error {
	if p.Disabled {
		return nil
	}
	size := 1.5
	if p.flash > 0 {
		size = 2.5
	}

	positions := WorldToScreen(p.X, p.Y, ctx.Camera, ctx.View, ctx.World)
	for i := 0; i < positions.Count; i++ {
		pos := positions.Positions[i]
		points := ctx.Canvas.BorrowPoints(4)
		points[0] = draw.Point{X: pos.X, Y: pos.Y - size}
		points[1] = draw.Point{X: pos.X + size, Y: pos.Y}
		points[2] = draw.Point{X: pos.X, Y: pos.Y + size}
		points[3] = draw.Point{X: pos.X - size, Y: pos.Y}
		ctx.Canvas.DrawPolygon(points, false)
	}
	return nil
}
