package server

import (
	"math/rand"
	"slices"
	"time"

	"github.com/tomz197/asteroid-waves/internal/object"
	"github.com/tomz197/asteroid-waves/internal/physics"
)

// WorldState is the mutable world. Only the server goroutine touches it; clients
// see it through snapshots.
type WorldState struct {
	Objects []object.Object
	toSpawn []object.Object // Joins Objects once the update pass finishes
	Screen  object.Screen   // Bounds objects wrap at
	World   object.Screen
	Delta   time.Duration // Length of the current tick

	collisions *collisionSet // Rebuilt every tick
}

// NewWorldState returns an empty world. Set World, then call InitGrids.
func NewWorldState() *WorldState {
	return &WorldState{Objects: []object.Object{}}
}

// InitGrids sizes the collision grids to World. Call it once World is set.
func (w *WorldState) InitGrids() {
	w.collisions = newCollisionSet(w.World)
}

// AddObject adds an object to the game world immediately.
func (w *WorldState) AddObject(obj object.Object) {
	w.Objects = append(w.Objects, obj)
}

// Spawn queues an object to be added after the current update cycle.
// Implements object.Spawner interface.
func (w *WorldState) Spawn(obj object.Object) {
	w.toSpawn = append(w.toSpawn, obj)
}

// removeObjects drops every object in gone, keeping the order of the rest.
func (w *WorldState) removeObjects(gone map[object.Object]struct{}) {
	if len(gone) == 0 {
		return
	}
	w.Objects = slices.DeleteFunc(w.Objects, func(obj object.Object) bool {
		_, ok := gone[obj]
		return ok
	})
}

// removeObject drops a single object.
func (w *WorldState) removeObject(target object.Object) {
	w.Objects = slices.DeleteFunc(w.Objects, func(obj object.Object) bool { return obj == target })
}

// updateObjects updates every object not in skip, dropping and releasing the
// ones that ask to be removed.
func (w *WorldState) updateObjects(ctx object.UpdateContext, skip map[object.Object]struct{}) {
	w.Objects = slices.DeleteFunc(w.Objects, func(obj object.Object) bool {
		if _, ok := skip[obj]; ok {
			return false
		}
		remove, _ := obj.Update(ctx)
		if remove {
			object.ReleaseObject(obj)
		}
		return remove
	})
}

// FlushSpawned adds all queued objects to the game and clears the queue.
func (w *WorldState) FlushSpawned() {
	w.Objects = append(w.Objects, w.toSpawn...)
	clear(w.toSpawn)
	w.toSpawn = w.toSpawn[:0]
}

// clearAsteroids drops every asteroid, live or still queued.
func (w *WorldState) clearAsteroids() {
	isRock := func(obj object.Object) bool {
		_, ok := obj.(*object.Asteroid)
		return ok
	}
	w.Objects = slices.DeleteFunc(w.Objects, isRock)
	w.toSpawn = slices.DeleteFunc(w.toSpawn, isRock)
}

// safeSpawnPosition picks a random position, preferring one at least minDist away
// from every live asteroid. Falls back to the roomiest candidate tried.
func (w *WorldState) safeSpawnPosition(rng *rand.Rand, minDist float64, attempts int) (float64, float64) {
	worldW := float64(w.World.Width)
	worldH := float64(w.World.Height)
	asteroids := object.FilterAsteroids(w.Objects)

	bestX, bestY, bestClearance := 0.0, 0.0, -1.0
	for i := 0; i < attempts || i == 0; i++ {
		x := rng.Float64() * worldW
		y := rng.Float64() * worldH

		clearance := -1.0 // -1 means nothing nearby at all
		for _, a := range asteroids {
			d := physics.WrappedDistanceSquared(x, y, a.X, a.Y, worldW, worldH)
			if clearance < 0 || d < clearance {
				clearance = d
			}
		}
		if clearance < 0 || clearance >= minDist*minDist {
			return x, y
		}
		if clearance > bestClearance {
			bestX, bestY, bestClearance = x, y, clearance
		}
	}
	return bestX, bestY
}
