package object

import (
	"math"
	"math/rand"
	"sync"
)

// Particles are spawned by the hundred each second, so they are pooled.
var particlePool = sync.Pool{
	New: func() any { return new(Particle) },
}

// Particle is a single drifting dot of a visual effect. It never collides.
type Particle struct {
	X, Y        float64
	VX, VY      float64
	Lifetime    float64 // Seconds left
	MaxLifetime float64
	Drag        float64 // Fraction of velocity kept per 1/60 s
	Symbol      rune
	Fade        bool // Stop drawing in the last quarter of its life
}

// burst describes one kind of particle effect.
type burst struct {
	symbols  []rune
	drag     float64
	minSpeed float64 // Fraction of the nominal speed
	maxSpeed float64
	minLife  float64 // Fraction of the nominal lifetime
	maxLife  float64
}

var (
	explosionBurst = burst{
		symbols:  []rune{'#', '@', '*', '%', 'X', 'O', '+', '▪'},
		drag:     0.95,
		minSpeed: 0.5, maxSpeed: 1.5,
		minLife: 0.5, maxLife: 1.0,
	}
	thrustBurst = burst{
		symbols:  []rune{'*', '+', '#', '^', '~'},
		drag:     0.85,
		minSpeed: 1.0, maxSpeed: 1.5,
		minLife: 0.4, maxLife: 1.0,
	}
	warpBurst = burst{
		symbols:  []rune{'.', '+', '*'},
		drag:     0.9,
		minSpeed: 0.8, maxSpeed: 1.2,
		minLife: 0.6, maxLife: 1.0,
	}
)

// NewParticle takes a particle from the pool and initialises it.
func NewParticle(x, y, vx, vy, lifetime float64, symbol rune) *Particle {
	p := particlePool.Get().(*Particle)
	*p = Particle{
		X: x, Y: y,
		VX: vx, VY: vy,
		Lifetime:    lifetime,
		MaxLifetime: lifetime,
		Drag:        0.95,
		Symbol:      symbol,
		Fade:        true,
	}
	return p
}

// Release puts the particle back in the pool. The server calls it on removal.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// emit spawns one particle of b heading along angle.
func (b burst) emit(spawner Spawner, x, y, angle, speed, lifetime float64) {
	spd := speed * (b.minSpeed + rand.Float64()*(b.maxSpeed-b.minSpeed))
	life := lifetime * (b.minLife + rand.Float64()*(b.maxLife-b.minLife))
	p := NewParticle(x, y, math.Cos(angle)*spd, math.Sin(angle)*spd, life, b.symbols[rand.Intn(len(b.symbols))])
	p.Drag = b.drag
	spawner.Spawn(p)
}

// SpawnExplosion throws count particles out from (x,y) in every direction.
func SpawnExplosion(x, y float64, count int, speed, lifetime float64, spawner Spawner) {
	if spawner == nil {
		return
	}
	for range count {
		explosionBurst.emit(spawner, x, y, rand.Float64()*2*math.Pi, speed, lifetime)
	}
}

// SpawnThrust leaves one or two exhaust particles behind a ship facing angle.
func SpawnThrust(x, y, angle float64, spawner Spawner) {
	if spawner == nil {
		return
	}
	for range 1 + rand.Intn(2) {
		spread := (rand.Float64() - 0.5) * 0.5
		thrustBurst.emit(spawner, x, y, angle+math.Pi+spread, 8.0, 0.25)
	}
}

// SpawnWarp marks an asteroid arriving at (x,y): a ring of sparks blown outwards.
func SpawnWarp(x, y float64, count int, spawner Spawner) {
	if spawner == nil || count <= 0 {
		return
	}
	step := 2 * math.Pi / float64(count)
	for i := range count {
		warpBurst.emit(spawner, x, y, float64(i)*step, 12.0, 0.4)
	}
}

// Update moves the particle and expires it. Particles do not wrap.
func (p *Particle) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta.Seconds()
	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		return true, nil
	}

	keep := math.Pow(p.Drag, dt*60)
	p.VX *= keep
	p.VY *= keep
	p.X += p.VX * dt
	p.Y += p.VY * dt

	return false, nil
}

// Draw plots the particle as a single canvas pixel.
func (p *Particle) Draw(ctx DrawContext) error {
	if p.Fade && p.MaxLifetime > 0 && p.Lifetime < p.MaxLifetime/4 {
		return nil
	}
	positions := WorldToScreen(p.X, p.Y, ctx.Camera, ctx.View, ctx.World)
	for _, pos := range positions.Positions[:positions.Count] {
		ctx.Canvas.SetFloat(pos.X, pos.Y)
	}
	return nil
}
