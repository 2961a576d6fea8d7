package harvest

import "github.com/vovakirdan/harvest/internal/core"

// resolveMove moves b by (vx, vy)*dt inside the playfield and slides along obstacles.
// Attempts, in order: full move, x only, y only. If all three are blocked the body
// stays where it was and resolveMove returns false.
func resolveMove(b *Body, vx, vy, dt float64, obstacles []Obstacle) bool {
	ox, oy := b.X, b.Y
	nx := core.ClampF(ox+vx*dt, 0, FieldW-b.W)
	ny := core.ClampF(oy+vy*dt, 0, FieldH-b.H)

	attempts := [3][2]float64{
		{nx, ny},
		{nx, oy},
		{ox, ny},
	}
	for _, pos := range attempts {
		b.X, b.Y = pos[0], pos[1]
		if !blocked(b.Bounds(), obstacles) {
			return true
		}
	}

	b.X, b.Y = ox, oy
	return false
}
