package main

// ReapZombies drops zombies with no health left, preserving order. The
// removed count feeds wave clearance.
func ReapZombies(zombies []*Zombie) []*Zombie {
	alive := zombies[:0]
	for _, z := range zombies {
		if z.Health > 0 {
			alive = append(alive, z)
		}
	}
	return alive
}

// AllPlayersDown reports whether every player in the roster is down.
// An empty roster does not count as a defeat; the room is torn down
// through the leave path instead.
func AllPlayersDown(players map[string]*Player) bool {
	if len(players) == 0 {
		return false
	}
	for _, p := range players {
		if !p.Down() {
			return false
		}
	}
	return true
}
