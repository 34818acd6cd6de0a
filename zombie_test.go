package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZombieSpawnsOutsideArena(t *testing.T) {
	for i := 0; i < 100; i++ {
		z := NewZombie()

		assert.Equal(t, ZombieMaxHealth, z.Health)
		assert.GreaterOrEqual(t, z.Speed, ZombieBaseSpeed)
		assert.LessOrEqual(t, z.Speed, ZombieBaseSpeed+ZombieSpeedJitter)
		assert.NotEmpty(t, z.ID)

		outside := z.X == -zombieSpawnMargin ||
			z.X == WorldWidth+zombieSpawnMargin ||
			z.Y == -zombieSpawnMargin ||
			z.Y == WorldHeight+zombieSpawnMargin
		assert.True(t, outside, "zombie spawned at (%v, %v), expected an off-screen edge", z.X, z.Y)
	}
}

func TestNearestLivingPlayer(t *testing.T) {
	players := map[string]*Player{
		"far":  {ID: "far", X: 1000, Y: 700, Health: 100},
		"near": {ID: "near", X: 110, Y: 100, Health: 100},
		"down": {ID: "down", X: 101, Y: 100, Health: 0},
	}

	target, dist := NearestLivingPlayer(100, 100, players)
	require.NotNil(t, target)
	assert.Equal(t, "near", target.ID)
	assert.InDelta(t, 10, dist, 0.001)
}

func TestNearestLivingPlayerAllDown(t *testing.T) {
	players := map[string]*Player{
		"a": {ID: "a", X: 100, Y: 100, Health: 0},
	}

	target, dist := NearestLivingPlayer(0, 0, players)
	assert.Nil(t, target)
	assert.True(t, math.IsInf(dist, 1))
}

func TestZombieAdvanceTowardNearestPlayer(t *testing.T) {
	z := &Zombie{X: 0, Y: 0, Health: ZombieMaxHealth, Speed: 2}
	players := map[string]*Player{
		"p": {ID: "p", X: 100, Y: 0, Health: 100},
	}

	z.Advance(players)
	assert.InDelta(t, 2, z.X, 0.001)
	assert.InDelta(t, 0, z.Y, 0.001)
}

func TestZombieHoldsPositionWithoutTarget(t *testing.T) {
	z := &Zombie{X: 50, Y: 60, Health: ZombieMaxHealth, Speed: 2}

	z.Advance(map[string]*Player{})
	assert.Equal(t, 50.0, z.X)
	assert.Equal(t, 60.0, z.Y)

	z.Advance(map[string]*Player{"p": {ID: "p", Health: 0}})
	assert.Equal(t, 50.0, z.X)
	assert.Equal(t, 60.0, z.Y)
}

func TestZombieTakeDamage(t *testing.T) {
	z := &Zombie{Health: ZombieMaxHealth}

	assert.False(t, z.TakeDamage(25))
	assert.Equal(t, 25, z.Health)

	assert.True(t, z.TakeDamage(25))
	assert.Equal(t, 0, z.Health)

	// dead zombies soak no further hits and never double-report a kill
	assert.False(t, z.TakeDamage(25))
	assert.Equal(t, 0, z.Health)
}
