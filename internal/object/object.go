// Package object holds the entities that live in the shared world: ships, asteroids,
// projectiles, particles and the spawn points that feed asteroids to the wave controller.
package object

import (
	"io"
	"math"
	"time"

	"github.com/tomz197/asteroid-waves/internal/draw"
	"github.com/tomz197/asteroid-waves/internal/input"
	"github.com/tomz197/asteroid-waves/internal/physics"
)

// Object is anything the server simulates and clients draw.
type Object interface {
	// Update advances the object by ctx.Delta. remove reports that it should leave the world.
	Update(ctx UpdateContext) (remove bool, err error)

	// Draw renders the object into ctx.Canvas relative to ctx.Camera.
	Draw(ctx DrawContext) error
}

// Spawner accepts objects created during an update. They join the world once
// the current update pass finishes.
type Spawner interface {
	Spawn(obj Object)
}

// Destructible objects are flagged first and removed on their next update.
type Destructible interface {
	MarkDestroyed()
	IsDestroyed() bool
}

// Releasable objects come from a pool and go back to it when removed.
type Releasable interface {
	Release()
}

// Input is the per-frame key state of the client controlling an object.
type Input = input.Input

// UpdateContext is passed to Object.Update once per server tick.
type UpdateContext struct {
	Delta   time.Duration
	Input   Input
	Screen  Screen // World bounds used for wrapping
	Spawner Spawner
}

// DrawContext is passed to Object.Draw once per client frame.
type DrawContext struct {
	Canvas *draw.Canvas
	Writer io.Writer
	Camera Camera // World position at the center of the view
	View   Screen
	World  Screen
}

// Camera is the world position a client's view is centered on.
type Camera struct {
	X, Y float64
}

// Screen is a rectangle of logical units, used both for the world and for views.
type Screen struct {
	Width   int
	Height  int
	CenterX int
	CenterY int
}

// WrapPosition folds x and y back inside the screen, treating it as a torus.
func (s Screen) WrapPosition(x, y *float64) {
	*x = wrapCoord(*x, float64(s.Width))
	*y = wrapCoord(*y, float64(s.Height))
}

func wrapCoord(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}

// ScreenPositions lists where an object appears in a view. A world smaller than the
// view can show the same object more than once.
type ScreenPositions struct {
	Positions [4]draw.Point
	Count     int
}

// screenMargin keeps large shapes drawn while their center is just off screen.
const screenMargin = 10.0

// WorldToScreen maps a world position into view coordinates for the given camera.
// The nearest wrapped copy comes first.
func WorldToScreen(worldX, worldY float64, cam Camera, view, world Screen) ScreenPositions {
	var out ScreenPositions

	vw, vh := float64(view.Width), float64(view.Height)
	ww, wh := float64(world.Width), float64(world.Height)

	// Offset from the camera along the short way around
	ox := vw/2 + physics.WrapDelta(worldX-cam.X, ww)
	oy := vh/2 + physics.WrapDelta(worldY-cam.Y, wh)

	for _, kx := range [3]float64{0, -1, 1} {
		for _, ky := range [3]float64{0, -1, 1} {
			if ww <= 0 && kx != 0 || wh <= 0 && ky != 0 {
				continue
			}
			sx := ox + kx*ww
			sy := oy + ky*wh
			if sx < -screenMargin || sx > vw+screenMargin || sy < -screenMargin || sy > vh+screenMargin {
				continue
			}
			if out.Count == len(out.Positions) {
				return out
			}
			out.Positions[out.Count] = draw.Point{X: sx, Y: sy}
			out.Count++
		}
	}
	return out
}

// ReleaseObject returns obj to its pool if it has one.
func ReleaseObject(obj Object) {
	if r, ok := obj.(Releasable); ok {
		r.Release()
	}
}

// collect returns the objects of type T for which keep is true.
func collect[T Object](objects []Object, keep func(T) bool) []T {
	var out []T
	for _, obj := range objects {
		if t, ok := obj.(T); ok && keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// FilterAsteroids returns the asteroids that are not marked destroyed.
func FilterAsteroids(objects []Object) []*Asteroid {
	return collect(objects, func(a *Asteroid) bool { return !a.Destroyed })
}

// FilterUsers returns every ship.
func FilterUsers(objects []Object) []*User {
	return collect(objects, func(*User) bool { return true })
}

// ShouldRenderBlink reports whether an object still under protection for
// remainingTime seconds is in the visible half of a blink at frequency Hz.
func ShouldRenderBlink(remainingTime float64, frequency float64) bool {
	if remainingTime <= 0 {
		return true
	}
	return int(remainingTime*frequency)%2 == 1
}
