package harvest

import "github.com/vovakirdan/harvest/internal/config"

// boost tracks the speed boost effect. At most one boost is active; picking up
// another while active refreshes the countdown without multiplying again.
type boost struct {
	active    bool
	remaining float64
	cfg       config.BoostConfig
}

// apply activates or refreshes the boost. It reports whether speed changed.
func (b *boost) apply(f *Farmer) bool {
	b.remaining = b.cfg.Duration
	if b.active {
		return false
	}
	b.active = true
	f.Speed *= b.cfg.Multiplier
	f.Boosted = true
	return true
}

// tick counts the boost down and reports whether it expired this tick.
func (b *boost) tick(dt float64, f *Farmer) bool {
	if !b.active {
		return false
	}
	b.remaining -= dt
	if b.remaining > 0 {
		return false
	}
	b.cancel(f)
	return true
}

// cancel ends an active boost immediately, restoring the player's speed.
func (b *boost) cancel(f *Farmer) {
	if b.active {
		f.Speed /= b.cfg.Multiplier
	}
	b.active = false
	b.remaining = 0
	f.Boosted = false
}

func newPowerUp(kind PowerUpKind, x, y float64) PowerUp {
	return PowerUp{
		Body: Body{X: x, Y: y, W: powerUpSize, H: powerUpSize, Alive: true},
		Kind: kind,
	}
}
