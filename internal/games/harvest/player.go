package harvest

import "github.com/vovakirdan/harvest/internal/config"

// Input exposes the directions currently held down. It is read once per tick.
type Input interface {
	Held(d Direction) bool
}

type noInput struct{}

func (noInput) Held(Direction) bool { return false }

// Farmer is the player-controlled farmer.
type Farmer struct {
	Body
	VX, VY  float64
	Speed   float64
	Facing  Direction
	Boosted bool // Cosmetic, mirrors the session's boost state
}

func newFarmer(cfg config.PlayerConfig) Farmer {
	return Farmer{
		Body: Body{
			X: FieldW/2 - farmerSize/2, Y: FieldH - 80,
			W: farmerSize, H: farmerSize,
			Alive: true,
		},
		Speed: cfg.Speed,
	}
}

// steer sets the velocity from held directions. Diagonals are not normalized.
func (f *Farmer) steer(in Input) {
	dx, dy := 0.0, 0.0
	if in.Held(DirLeft) {
		dx--
	}
	if in.Held(DirRight) {
		dx++
	}
	if in.Held(DirUp) {
		dy--
	}
	if in.Held(DirDown) {
		dy++
	}
	f.VX = dx * f.Speed
	f.VY = dy * f.Speed
	f.Facing = facingFor(f.VX, f.VY, f.Facing)
}

func (f *Farmer) move(dt float64, obstacles []Obstacle) {
	resolveMove(&f.Body, f.VX, f.VY, dt, obstacles)
}
