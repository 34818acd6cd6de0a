package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReapZombiesPreservesOrder(t *testing.T) {
	zombies := []*Zombie{
		{ID: "a", Health: 10},
		{ID: "b", Health: 0},
		{ID: "c", Health: 50},
		{ID: "d", Health: 0},
	}

	alive := ReapZombies(zombies)
	require.Len(t, alive, 2)
	assert.Equal(t, "a", alive[0].ID)
	assert.Equal(t, "c", alive[1].ID)
}

func TestAllPlayersDown(t *testing.T) {
	assert.False(t, AllPlayersDown(map[string]*Player{}), "empty roster is not a defeat")

	players := map[string]*Player{
		"a": {ID: "a", Health: 0},
		"b": {ID: "b", Health: 50},
	}
	assert.False(t, AllPlayersDown(players))

	players["b"].Health = 0
	assert.True(t, AllPlayersDown(players))
}
