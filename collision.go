package main

import "time"

// BulletHitRange is the bullet–zombie distance below which a hit registers.
const BulletHitRange = 15.0

// HitReport collects what one resolver pass did to the room.
type HitReport struct {
	// Kills maps player id -> zombies killed by their bullets this tick.
	Kills map[string]int
	// Downed lists players whose health crossed from >0 to <=0 this tick.
	Downed []string
}

// ResolveCollisions runs one tick of interaction checks: bullet–zombie hits
// followed by zombie attacks. It mutates zombie and player health in place
// and returns the surviving bullets (consumed bullets are dropped) plus a
// report of kills and newly-downed players.
//
// A bullet hits at most one zombie; the first zombie in iteration order
// within range wins and the bullet is spent. Dead zombies are left in the
// list for the combat resolver to reap.
func ResolveCollisions(bullets []*Bullet, zombies []*Zombie, players map[string]*Player, now time.Time) ([]*Bullet, HitReport) {
	report := HitReport{Kills: make(map[string]int)}

	surviving := bullets[:0]
	for _, b := range bullets {
		hit := false
		for _, z := range zombies {
			if z.Health <= 0 {
				continue
			}
			if Distance(b.X, b.Y, z.X, z.Y) < BulletHitRange {
				if z.TakeDamage(b.Damage) {
					report.Kills[b.PlayerID]++
				}
				hit = true
				break
			}
		}
		if !hit {
			surviving = append(surviving, b)
		}
	}

	// Each zombie bites its nearest living player, at most once per tick
	// and no more than once per cooldown window.
	for _, z := range zombies {
		if z.Health <= 0 {
			continue
		}
		target, dist := NearestLivingPlayer(z.X, z.Y, players)
		if target == nil || dist >= ZombieAttackRange {
			continue
		}
		if now.Sub(z.LastAttack) < ZombieAttackCooldown {
			continue
		}
		z.LastAttack = now
		if target.TakeDamage(ZombieAttackDamage) {
			report.Downed = append(report.Downed, target.ID)
		}
	}

	return surviving, report
}
