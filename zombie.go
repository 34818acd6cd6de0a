package main

import (
	"math"
	"math/rand"
	"time"
)

const (
	ZombieMaxHealth      = 50
	ZombieBaseSpeed      = 1.0 // units per tick
	ZombieSpeedJitter    = 0.5 // added speed, randomized per zombie
	ZombieAttackRange    = 30.0
	ZombieAttackDamage   = 20
	ZombieAttackCooldown = time.Second

	// Distance outside the world edge at which zombies materialize.
	zombieSpawnMargin = 50.0
)

// Zombie is an AI-controlled enemy. It always walks toward the nearest
// living player; there is no other behavior.
type Zombie struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Health    int     `json:"health"`
	MaxHealth int     `json:"maxHealth"`
	Speed     float64 `json:"speed"`

	LastAttack time.Time `json:"-"`
}

// NewZombie spawns a zombie just outside a uniformly random world edge.
// Positions are intentionally out of bounds so zombies shamble into view.
func NewZombie() *Zombie {
	z := &Zombie{
		ID:        GenerateID(5),
		Health:    ZombieMaxHealth,
		MaxHealth: ZombieMaxHealth,
		Speed:     ZombieBaseSpeed + rand.Float64()*ZombieSpeedJitter,
	}

	switch rand.Intn(4) {
	case 0: // top
		z.X = rand.Float64() * WorldWidth
		z.Y = -zombieSpawnMargin
	case 1: // right
		z.X = WorldWidth + zombieSpawnMargin
		z.Y = rand.Float64() * WorldHeight
	case 2: // bottom
		z.X = rand.Float64() * WorldWidth
		z.Y = WorldHeight + zombieSpawnMargin
	default: // left
		z.X = -zombieSpawnMargin
		z.Y = rand.Float64() * WorldHeight
	}
	return z
}

// NearestLivingPlayer returns the closest player with health > 0 and the
// distance to it, or (nil, +Inf) when everyone is down.
func NearestLivingPlayer(x, y float64, players map[string]*Player) (*Player, float64) {
	var nearest *Player
	best := math.Inf(1)
	for _, p := range players {
		if p.Down() {
			continue
		}
		d := Distance(x, y, p.X, p.Y)
		if d < best {
			best = d
			nearest = p
		}
	}
	return nearest, best
}

// Advance moves the zombie one tick toward the nearest living player.
// With no living target the zombie holds position.
func (z *Zombie) Advance(players map[string]*Player) {
	target, _ := NearestLivingPlayer(z.X, z.Y, players)
	if target == nil {
		return
	}
	angle := math.Atan2(target.Y-z.Y, target.X-z.X)
	z.X += math.Cos(angle) * z.Speed
	z.Y += math.Sin(angle) * z.Speed
}

// TakeDamage reduces health and returns true if the zombie died from this
// hit. Health never drops below zero.
func (z *Zombie) TakeDamage(dmg int) bool {
	if z.Health <= 0 {
		return false
	}
	z.Health -= dmg
	if z.Health <= 0 {
		z.Health = 0
		return true
	}
	return false
}
