package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/asteroid-waves/internal/draw"
)

// AsteroidSize is the size class of an asteroid.
type AsteroidSize int

const (
	AsteroidSmall  AsteroidSize = 1
	AsteroidMedium AsteroidSize = 2
	AsteroidLarge  AsteroidSize = 3
)

// asteroidClass holds everything that varies with size.
type asteroidClass struct {
	radius float64
	speed  float64
	cost   int // Wave tokens spent to spawn one
	debris int // Particles released when destroyed
}

var asteroidClasses = map[AsteroidSize]asteroidClass{
	AsteroidSmall:  {radius: 1.5, speed: 15, cost: 1, debris: 4},
	AsteroidMedium: {radius: 3.0, speed: 10, cost: 3, debris: 8},
	AsteroidLarge:  {radius: 5.0, speed: 6, cost: 5, debris: 12},
}

// fragmentsPerSplit is how many next-size-down rocks a destroyed asteroid breaks into.
const fragmentsPerSplit = 2

// protectionBlinkHz is the blink rate while spawn protection lasts.
const protectionBlinkHz = 5.0

// Asteroid is a drifting, spinning rock. Wave-spawned asteroids count towards the
// wave; fragments from splitting do not.
type Asteroid struct {
	X, Y            float64
	VX, VY          float64
	Angle           float64 // Rotation of the outline
	RotationSpeed   float64 // Radians per second
	Size            AsteroidSize
	Radius          float64
	Vertices        []float64 // Outline radius at evenly spaced angles
	Destroyed       bool
	SpawnProtection float64 // Seconds left during which hits are ignored
	Fragment        bool
}

// NewAsteroid creates an asteroid at (x,y) heading along angle. A negative angle
// picks a random heading.
func NewAsteroid(x, y float64, size AsteroidSize, angle float64) *Asteroid {
	class := asteroidClasses[size]
	if angle < 0 {
		angle = rand.Float64() * 2 * math.Pi
	}

	return &Asteroid{
		X:             x,
		Y:             y,
		VX:            math.Cos(angle) * class.speed,
		VY:            math.Sin(angle) * class.speed,
		Angle:         rand.Float64() * 2 * math.Pi,
		RotationSpeed: rand.Float64()*2 - 1,
		Size:          size,
		Radius:        class.radius,
		Vertices:      jaggedOutline(class.radius),
	}
}

// jaggedOutline returns 8-12 vertex radii within ±30% of radius.
func jaggedOutline(radius float64) []float64 {
	verts := make([]float64, 8+rand.Intn(5))
	for i := range verts {
		verts[i] = radius * (0.7 + rand.Float64()*0.6)
	}
	return verts
}

// AsteroidCost returns the wave tokens needed to spawn an asteroid of size.
// Unknown sizes cost nothing.
func AsteroidCost(size AsteroidSize) int {
	return asteroidClasses[size].cost
}

// IsProtected reports whether the asteroid is still shielded after spawning.
func (a *Asteroid) IsProtected() bool {
	return a.SpawnProtection > 0
}

// Update drifts and spins the asteroid. A destroyed asteroid bursts into debris and,
// unless it is already the smallest size, splits into fragments.
func (a *Asteroid) Update(ctx UpdateContext) (bool, error) {
	if a.Destroyed {
		a.shatter(ctx.Spawner)
		return true, nil
	}

	dt := ctx.Delta.Seconds()
	a.SpawnProtection = math.Max(0, a.SpawnProtection-dt)
	a.Angle += a.RotationSpeed * dt
	a.X += a.VX * dt
	a.Y += a.VY * dt
	ctx.Screen.WrapPosition(&a.X, &a.Y)

	return false, nil
}

// shatter spawns the explosion and fragments of a destroyed asteroid.
func (a *Asteroid) shatter(spawner Spawner) {
	if spawner == nil {
		return
	}
	SpawnExplosion(a.X, a.Y, asteroidClasses[a.Size].debris, 20.0, 0.5, spawner)

	if a.Size <= AsteroidSmall {
		return
	}
	for range fragmentsPerSplit {
		child := NewAsteroid(a.X, a.Y, a.Size-1, -1)
		child.Fragment = true
		spawner.Spawn(child)
	}
}

// Draw outlines the asteroid, blinking while it is protected.
func (a *Asteroid) Draw(ctx DrawContext) error {
	if !ShouldRenderBlink(a.SpawnProtection, protectionBlinkHz) {
		return nil
	}

	n := len(a.Vertices)
	step := 2 * math.Pi / float64(n)
	positions := WorldToScreen(a.X, a.Y, ctx.Camera, ctx.View, ctx.World)
	for i := 0; i < positions.Count; i++ {
		center := positions.Positions[i]
		// Each client owns its canvas, so the borrowed buffer is not shared
		points := ctx.Canvas.BorrowPoints(n)
		for v, r := range a.Vertices {
			theta := a.Angle + float64(v)*step
			points[v] = draw.Point{
				X: center.X + math.Cos(theta)*r,
				Y: center.Y + math.Sin(theta)*r,
			}
		}
		ctx.Canvas.DrawPolygon(points, false)
	}
	return nil
}

// MarkDestroyed flags the asteroid to shatter on its next update.
func (a *Asteroid) MarkDestroyed() {
	a.Destroyed = true
}

// IsDestroyed reports whether the asteroid has been hit.
func (a *Asteroid) IsDestroyed() bool {
	return a.Destroyed
}

// GetPosition returns the asteroid's center.
func (a *Asteroid) GetPosition() (float64, float64) {
	return a.X, a.Y
}

// GetRadius returns the collision radius.
func (a *Asteroid) GetRadius() float64 {
	return a.Radius
}
