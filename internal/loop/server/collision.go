package server

import (
	"math"

	"github.com/tomz197/asteroid-waves/internal/loop/config"
	"github.com/tomz197/asteroid-waves/internal/object"
	"github.com/tomz197/asteroid-waves/internal/physics"
)

// collisionGridCellSize must cover the largest collision distance, two large
// asteroids touching (5 + 5).
const collisionGridCellSize = 10.0

// collisionSet is the broad phase for one tick: every projectile and asteroid,
// bucketed by position. Slices and grids are reused from tick to tick.
type collisionSet struct {
	projectiles []*object.Projectile
	asteroids   []*object.Asteroid
	shots       *physics.SpatialGrid
	rocks       *physics.SpatialGrid
}

func newCollisionSet(world object.Screen) *collisionSet {
	w, h := float64(world.Width), float64(world.Height)
	return &collisionSet{
		shots: physics.NewSpatialGrid(w, h, collisionGridCellSize),
		rocks: physics.NewSpatialGrid(w, h, collisionGridCellSize),
	}
}

// index rebuilds the set from the world's objects.
func (c *collisionSet) index(objects []object.Object) {
	c.projectiles = c.projectiles[:0]
	c.asteroids = c.asteroids[:0]
	c.shots.Clear()
	c.rocks.Clear()

	for _, obj := range objects {
		switch o := obj.(type) {
		case *object.Projectile:
			c.shots.Insert(o.X, o.Y, len(c.projectiles))
			c.projectiles = append(c.projectiles, o)
		case *object.Asteroid:
			c.rocks.Insert(o.X, o.Y, len(c.asteroids))
			c.asteroids = append(c.asteroids, o)
		}
	}
}

// projectileHits destroys every projectile that lands inside an unprotected
// asteroid, together with the asteroid, and calls hit for each pair. A projectile
// destroys at most one asteroid.
func (c *collisionSet) projectileHits(hit func(*object.Projectile, *object.Asteroid)) {
	for _, p := range c.projectiles {
		if p.IsDestroyed() {
			continue
		}
		c.rocks.QueryNear(p.X, p.Y, func(i int, dx, dy float64) bool {
			a := c.asteroids[i]
			if a.IsDestroyed() || a.IsProtected() || !physics.PointInCircle(dx, dy, 0, 0, a.GetRadius()) {
				return false
			}
			p.MarkDestroyed()
			a.MarkDestroyed()
			hit(p, a)
			return true
		})
	}
}

// cancelProjectiles destroys projectiles that meet in flight.
func (c *collisionSet) cancelProjectiles() {
	for i, p1 := range c.projectiles {
		if p1.IsDestroyed() {
			continue
		}
		c.shots.QueryNear(p1.X, p1.Y, func(j int, dx, dy float64) bool {
			p2 := c.projectiles[j]
			if j <= i || p2.IsDestroyed() {
				return false
			}
			if !physics.CirclesOverlap(0, 0, object.ProjectileRadius, dx, dy, object.ProjectileRadius) {
				return false
			}
			p1.MarkDestroyed()
			p2.MarkDestroyed()
			return true
		})
	}
}

// bounceAsteroids resolves every overlapping pair of asteroids.
func (c *collisionSet) bounceAsteroids() {
	for i, a1 := range c.asteroids {
		if a1.IsDestroyed() {
			continue
		}
		c.rocks.QueryNear(a1.X, a1.Y, func(j int, dx, dy float64) bool {
			a2 := c.asteroids[j]
			if j <= i || a2.IsDestroyed() {
				return false
			}
			if dist := math.Hypot(dx, dy); dist > 0 && dist < a1.GetRadius()+a2.GetRadius() {
				bounce(a1, a2, dx/dist, dy/dist, dist)
			}
			return false
		})
	}
}

// shipHit reports whether ship touches an unprotected asteroid or a projectile
// fired by anyone but ownerID. A projectile that hits is spent.
func (c *collisionSet) shipHit(ship *object.User, ownerID int) bool {
	x, y := ship.GetPosition()
	r := ship.GetRadius()

	hit := false
	c.shots.QueryNear(x, y, func(i int, dx, dy float64) bool {
		p := c.projectiles[i]
		if p.IsDestroyed() || p.OwnerID == ownerID || !physics.PointInCircle(dx, dy, 0, 0, r) {
			return false
		}
		p.MarkDestroyed()
		hit = true
		return true
	})
	if hit {
		return true
	}

	c.rocks.QueryNear(x, y, func(i int, dx, dy float64) bool {
		a := c.asteroids[i]
		hit = !a.IsDestroyed() && !a.IsProtected() && physics.CirclesOverlap(0, 0, r, dx, dy, a.GetRadius())
		return hit
	})
	return hit
}

// bounce applies an elastic collision between two asteroids, with mass taken as
// radius squared, and pushes them apart. (nx, ny) is the unit normal from a1 to a2
// the short way around the world; positions rewrap on the next update.
func bounce(a1, a2 *object.Asteroid, nx, ny, dist float64) {
	closing := (a1.VX-a2.VX)*nx + (a1.VY-a2.VY)*ny
	if closing < 0 {
		return
	}

	m1, m2 := a1.Radius*a1.Radius, a2.Radius*a2.Radius
	total := m1 + m2

	j := 2 * closing / total
	a1.VX -= j * m2 * nx
	a1.VY -= j * m2 * ny
	a2.VX += j * m1 * nx
	a2.VY += j * m1 * ny

	if overlap := a1.Radius + a2.Radius - dist; overlap > 0 {
		push1, push2 := overlap*m2/total, overlap*m1/total
		a1.X -= nx * push1
		a1.Y -= ny * push1
		a2.X += nx * push2
		a2.Y += ny * push2
	}
}

// asteroidScore is the reward for shooting an asteroid of the given size.
func asteroidScore(size object.AsteroidSize) int {
	switch size {
	case object.AsteroidLarge:
		return config.ScoreLargeAsteroid
	case object.AsteroidMedium:
		return config.ScoreMediumAsteroid
	case object.AsteroidSmall:
		return config.ScoreSmallAsteroid
	}
	return 0
}
