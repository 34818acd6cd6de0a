package main

import "math"

// Bullets live in a slightly larger box than the player area so shots fired
// near a wall can still travel off screen before being culled.
const (
	BulletMinX = 0.0
	BulletMaxX = WorldWidth
	BulletMinY = 0.0
	BulletMaxY = WorldHeight
)

// Bullet is a projectile in flight. Damage and speed come from the server
// weapon table at creation time, never from the client.
type Bullet struct {
	ID       string  `json:"id"`
	PlayerID string  `json:"playerId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
	Speed    float64 `json:"speed"`
	Damage   int     `json:"damage"`
}

// NewBullet creates a bullet at the given origin heading along angle.
func NewBullet(ownerID string, x, y, angle float64, w Weapon) *Bullet {
	return &Bullet{
		ID:       GenerateID(3),
		PlayerID: ownerID,
		X:        x,
		Y:        y,
		Angle:    angle,
		Speed:    w.Speed,
		Damage:   w.Damage,
	}
}

// Advance moves the bullet one tick along its stored angle.
func (b *Bullet) Advance() {
	b.X += math.Cos(b.Angle) * b.Speed
	b.Y += math.Sin(b.Angle) * b.Speed
}

// InBounds reports whether the bullet is still inside the world box.
func (b *Bullet) InBounds() bool {
	return b.X >= BulletMinX && b.X <= BulletMaxX && b.Y >= BulletMinY && b.Y <= BulletMaxY
}

// AdvanceBullets moves every bullet one tick and drops the ones that left
// the world, preserving order.
func AdvanceBullets(bullets []*Bullet) []*Bullet {
	alive := bullets[:0]
	for _, b := range bullets {
		b.Advance()
		if b.InBounds() {
			alive = append(alive, b)
		}
	}
	return alive
}
