package object

import "math"

// Terminal cells are about twice as tall as wide; ship geometry stretches X by this.
const shipAspect = 2.0

// Ship handling defaults.
const (
	shipThrust   = 40.0 // units/s²
	shipTurnRate = 5.0  // rad/s
	shipMaxSpeed = 25.0
	shipDrag     = 0.5  // Fraction of speed kept per second while coasting
	shipSize     = 2.0
	shipFireRate = 0.15 // Seconds between shots
	shipWingSpan = 2.5  // Wing angle from the nose (radians)
	shipWingLen  = 0.7  // Wing length relative to the nose
)

// User is a player's ship. The owning client's input drives it.
type User struct {
	X, Y   float64
	VX, VY float64
	Angle  float64 // Heading in radians, 0 points right

	ThrustPower   float64
	RotationSpeed float64
	MaxSpeed      float64
	Drag          float64
	Size          float64
	FireRate      float64

	OwnerID  int
	Username string

	fireCooldown float64
}

// NewUser places a ship at (x,y) pointing up.
func NewUser(x, y float64) *User {
	return &User{
		X:             x,
		Y:             y,
		Angle:         -math.Pi / 2,
		ThrustPower:   shipThrust,
		RotationSpeed: shipTurnRate,
		MaxSpeed:      shipMaxSpeed,
		Drag:          shipDrag,
		Size:          shipSize,
		FireRate:      shipFireRate,
	}
}

// hullPoint returns the point at distance length*Size along heading from the ship
// center, offset by (x,y) and corrected for cell aspect.
func (u *User) hullPoint(x, y, heading, length float64) (float64, float64) {
	sin, cos := math.Sincos(heading)
	return x + cos*u.Size*length*shipAspect, y + sin*u.Size*length
}

// steer turns the ship and keeps Angle within [-π, π].
func (u *User) steer(in Input, dt float64) {
	switch {
	case in.Left && !in.Right:
		u.Angle -= u.RotationSpeed * dt
	case in.Right && !in.Left:
		u.Angle += u.RotationSpeed * dt
	}
	u.Angle = math.Remainder(u.Angle, 2*math.Pi)
}

// accelerate applies thrust or coasting drag, then caps the speed.
func (u *User) accelerate(thrusting bool, dt float64, spawner Spawner) {
	if thrusting {
		sin, cos := math.Sincos(u.Angle)
		u.VX += cos * u.ThrustPower * dt
		u.VY += sin * u.ThrustPower * dt

		tailX, tailY := u.hullPoint(u.X, u.Y, u.Angle, -0.5)
		SpawnThrust(tailX, tailY, u.Angle, spawner)
	} else {
		keep := math.Pow(u.Drag, dt)
		u.VX *= keep
		u.VY *= keep
	}

	if speed := math.Hypot(u.VX, u.VY); speed > u.MaxSpeed {
		u.VX *= u.MaxSpeed / speed
		u.VY *= u.MaxSpeed / speed
	}
}

// fire launches a projectile from the nose when the cooldown allows.
func (u *User) fire(trigger bool, dt float64, spawner Spawner) {
	u.fireCooldown -= dt
	if !trigger || u.fireCooldown > 0 || spawner == nil {
		return
	}
	u.fireCooldown = u.FireRate
	noseX, noseY := u.hullPoint(u.X, u.Y, u.Angle, 1)
	spawner.Spawn(NewProjectile(noseX, noseY, u.Angle, u.VX, u.VY, u.OwnerID))
}

// Update steers, moves and fires the ship. Ships are only removed by the server.
func (u *User) Update(ctx UpdateContext) (bool, error) {
	dt := ctx.Delta.Seconds()

	u.steer(ctx.Input, dt)
	u.accelerate(ctx.Input.Up, dt, ctx.Spawner)

	u.X += u.VX * dt
	u.Y += u.VY * dt
	ctx.Screen.WrapPosition(&u.X, &u.Y)

	u.fire(ctx.Input.Space, dt, ctx.Spawner)
	return false, nil
}

// Draw fills the ship triangle at every visible copy of its position.
func (u *User) Draw(ctx DrawContext) error {
	positions := WorldToScreen(u.X, u.Y, ctx.Camera, ctx.View, ctx.World)
	for _, pos := range positions.Positions[:positions.Count] {
		hull := ctx.Canvas.BorrowPoints(3)
		hull[0].X, hull[0].Y = u.hullPoint(pos.X, pos.Y, u.Angle, 1)
		hull[1].X, hull[1].Y = u.hullPoint(pos.X, pos.Y, u.Angle+shipWingSpan, shipWingLen)
		hull[2].X, hull[2].Y = u.hullPoint(pos.X, pos.Y, u.Angle-shipWingSpan, shipWingLen)
		ctx.Canvas.DrawPolygon(hull, true)
	}
	return nil
}

// GetPosition returns the ship center.
func (u *User) GetPosition() (float64, float64) {
	return u.X, u.Y
}

// GetRadius returns the collision radius.
func (u *User) GetRadius() float64 {
	return u.Size
}
