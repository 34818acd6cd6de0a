package main

import "time"

// Weapon stats are the single authoritative source for bullet damage and
// speed. Clients send only the weapon id; any damage or speed they claim is
// ignored. FireRate and Pellets describe client-side behavior (shot cadence
// and shotgun fan-out) and are not enforced server-side — see DESIGN.md.
type Weapon struct {
	ID       string
	Damage   int
	Speed    float64 // bullet units per tick
	FireRate time.Duration
	Pellets  int
}

const DefaultWeaponID = "pistol"

var weapons = map[string]Weapon{
	"pistol":  {ID: "pistol", Damage: 25, Speed: 8, FireRate: 300 * time.Millisecond, Pellets: 1},
	"rifle":   {ID: "rifle", Damage: 35, Speed: 10, FireRate: 150 * time.Millisecond, Pellets: 1},
	"shotgun": {ID: "shotgun", Damage: 60, Speed: 6, FireRate: 800 * time.Millisecond, Pellets: 5},
}

// WeaponByID resolves a client-supplied weapon id. Unknown ids fall back to
// the pistol so a garbled command degrades instead of failing.
func WeaponByID(id string) Weapon {
	if w, ok := weapons[id]; ok {
		return w
	}
	return weapons[DefaultWeaponID]
}
