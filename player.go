package main

import "math/rand"

const (
	PlayerMaxHealth = 100
	PlayerSpeed     = 3.0 // units per tick

	WorldWidth  = 1200.0
	WorldHeight = 800.0

	// Players are clamped to a margin inside the world so sprites never
	// clip the arena walls.
	PlayerMinX = 20.0
	PlayerMaxX = WorldWidth - 20.0
	PlayerMinY = 20.0
	PlayerMaxY = WorldHeight - 20.0
)

// Customization holds the client-chosen colors. The server never interprets
// them, it only echoes them back in snapshots.
type Customization struct {
	UniformColor string `json:"uniformColor"`
	HelmetColor  string `json:"helmetColor"`
}

// Player represents one survivor in a room. Identity is the connection id.
type Player struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Customization Customization `json:"customization"`
	X             float64       `json:"x"`
	Y             float64       `json:"y"`
	Health        int           `json:"health"`
	MaxHealth     int           `json:"maxHealth"`
	Speed         float64       `json:"speed"`

	// Per-game bookkeeping, not part of the snapshot.
	Kills        int   `json:"-"`
	AuthPlayerID int64 `json:"-"`
}

// NewPlayer creates a player at a random position away from the arena edges.
func NewPlayer(id, name string, c Customization) *Player {
	return &Player{
		ID:            id,
		Name:          name,
		Customization: c,
		X:             rand.Float64()*1000 + 100,
		Y:             rand.Float64()*600 + 100,
		Health:        PlayerMaxHealth,
		MaxHealth:     PlayerMaxHealth,
		Speed:         PlayerSpeed,
	}
}

// Down reports whether the player is out of the fight. Down players stay in
// the roster but are excluded from movement and zombie targeting.
func (p *Player) Down() bool {
	return p.Health <= 0
}

// Move applies one movement command. dx/dy are expected to be unit-normalized
// by the client but nothing here depends on that — they are simply scaled by
// the player's speed and the result clamped to the arena.
func (p *Player) Move(dx, dy float64) {
	if p.Down() {
		return
	}
	p.X = Clamp(p.X+dx*p.Speed, PlayerMinX, PlayerMaxX)
	p.Y = Clamp(p.Y+dy*p.Speed, PlayerMinY, PlayerMaxY)
}

// TakeDamage reduces health and returns true if the player went down from
// this hit. Health never drops below zero.
func (p *Player) TakeDamage(dmg int) bool {
	if p.Down() {
		return false
	}
	p.Health -= dmg
	if p.Health <= 0 {
		p.Health = 0
		return true
	}
	return false
}
