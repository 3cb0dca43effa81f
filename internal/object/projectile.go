package object

import "math"

// Projectile tuning.
const (
	ProjectileSpeed    = 50.0 // Added to the shooter's velocity
	ProjectileLifetime = 2.0  // Seconds before a miss disappears
	ProjectileRadius   = 0.5  // Used when two projectiles meet
)

// Projectile is a shot fired by a ship. Hits are resolved by the server, which uses
// OwnerID to credit the score and to keep ships from shooting themselves.
type Projectile struct {
	X, Y      float64
	VX, VY    float64
	Lifetime  float64
	Symbol    rune
	OwnerID   int
	destroyed bool
}

// NewProjectile fires a shot from (x,y) along angle, carrying the shooter's velocity.
func NewProjectile(x, y, angle, shooterVX, shooterVY float64, ownerID int) *Projectile {
	sin, cos := math.Sincos(angle)
	return &Projectile{
		X:        x,
		Y:        y,
		VX:       shooterVX + cos*ProjectileSpeed,
		VY:       shooterVY + sin*ProjectileSpeed,
		Lifetime: ProjectileLifetime,
		Symbol:   '•',
		OwnerID:  ownerID,
	}
}

// MarkDestroyed spends the projectile; it is removed on its next update.
func (p *Projectile) MarkDestroyed() {
	p.destroyed = true
	p.Lifetime = 0
}

// IsDestroyed reports whether the projectile has hit something or run out of time.
func (p *Projectile) IsDestroyed() bool {
	return p.destroyed || p.Lifetime <= 0
}

// Update flies the projectile, wrapping at world edges, until its lifetime runs out.
func (p *Projectile) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta.Seconds()
	if p.Lifetime -= dt; p.Lifetime <= 0 {
		return true, nil
	}
	p.X += p.VX * dt
	p.Y += p.VY * dt
	ctx.Screen.WrapPosition(&p.X, &p.Y)
	return false, nil
}

// Draw plots the projectile as a single canvas pixel.
func (p *Projectile) Draw(ctx DrawContext) error {
	positions := WorldToScreen(p.X, p.Y, ctx.Camera, ctx.View, ctx.World)
	for _, pos := range positions.Positions[:positions.Count] {
		ctx.Canvas.SetFloat(pos.X, pos.Y)
	}
	return nil
}
