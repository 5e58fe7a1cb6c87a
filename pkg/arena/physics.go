package arena

import "math"

// advanceBullets moves every bullet one tick and drops those that left the
// arena or outlived their lifetime
func advanceBullets(bullets []Bullet, r Rules) []Bullet {
	kept := make([]Bullet, 0, len(bullets))
	for _, b := range bullets {
		b.X += b.DX
		b.Y += b.DY
		b.Lifetime++

		inside := b.X >= 0 && b.X <= r.Width && b.Y >= 0 && b.Y <= r.Height
		if inside && b.Lifetime < r.BulletLifetime {
			kept = append(kept, b)
		}
	}
	return kept
}

// resolveTankCollisions pushes overlapping live tanks apart so that no two
// centers are closer than one tank diameter
func (m *Match) resolveTankCollisions() {
	alive := make([]*Tank, 0, len(m.tanks))
	for _, t := range m.tanks {
		if t.Alive {
			alive = append(alive, t)
		}
	}

	minDist := m.rules.TankSize
	for i := 0; i < len(alive); i++ {
		for j := i + 1; j < len(alive); j++ {
			a, b := alive[i], alive[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Hypot(dx, dy)

			if dist == 0 {
				// no normal to push along; pick one at random
				theta := m.rng.Float64() * 2 * math.Pi
				nx := math.Cos(theta) * m.rules.NudgeDistance
				ny := math.Sin(theta) * m.rules.NudgeDistance
				a.X -= nx
				a.Y -= ny
				b.X += nx
				b.Y += ny
				m.clampTank(a)
				m.clampTank(b)
				continue
			}

			if dist < minDist {
				shift := (minDist - dist) / 2
				nx, ny := dx/dist, dy/dist
				a.X -= nx * shift
				a.Y -= ny * shift
				b.X += nx * shift
				b.Y += ny * shift
				m.clampTank(a)
				m.clampTank(b)
			}
		}
	}
}

func (m *Match) clampTank(t *Tank) {
	half := m.rules.HalfSize()
	t.X = clamp(t.X, half, m.rules.Width-half)
	t.Y = clamp(t.Y, half, m.rules.Height-half)
}

// checkHits applies bullet damage. A bullet hits at most one tank: the first
// live tank in registration order within one radius of it.
func (m *Match) checkHits() {
	radius := m.rules.HalfSize()
	remaining := make([]Bullet, 0, len(m.bullets))

	for _, b := range m.bullets {
		hit := false
		for _, t := range m.tanks {
			if !t.Alive {
				continue
			}
			if math.Hypot(b.X-t.X, b.Y-t.Y) > radius {
				continue
			}

			t.TakeDamage(m.rules.DamagePerHit)
			m.logf("%s hit %s. Health: %d", b.Owner, t.Name, t.Health)

			if shooter, ok := m.byName[b.Owner]; ok {
				shooter.Score += m.rules.HitPoints
				if !t.Alive {
					shooter.Kills++
					shooter.Score += m.rules.KillBonus
					m.logf("%s was destroyed by %s.", t.Name, b.Owner)
				}
			}
			hit = true
			break
		}
		if !hit {
			remaining = append(remaining, b)
		}
	}

	m.bullets = remaining
}
