package harvest

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/harvest/internal/config"
)

const (
	arriveEpsilon = 2.0 // Distance at which the competitor stops chasing
	valueBias     = 0.2 // Distance discount per point for crops worth more than 1
)

// Competitor is the AI farmer.
type Competitor struct {
	Body
	VX, VY float64
	Speed  float64
	Score  int
	Facing Direction

	target   CropHandle
	cooldown float64 // Seconds until the next scheduled retarget

	retargetEvery float64
	wanderChance  float64
}

func newCompetitor(cfg config.CompetitorConfig) Competitor {
	return Competitor{
		Body: Body{
			X: FieldW/2 - competitorSize/2, Y: 40,
			W: competitorSize, H: competitorSize,
			Alive: true,
		},
		Speed:         cfg.Speed,
		target:        NoCrop,
		retargetEvery: cfg.RetargetInterval,
		wanderChance:  cfg.WanderChance,
	}
}

// Target returns the current target handle, NoCrop when there is none.
func (c *Competitor) Target() CropHandle {
	return c.target
}

// acquire returns the live crop with the smallest value-adjusted distance.
// Distances to crops worth more than one point are divided by 1+points*0.2.
func (c *Competitor) acquire(field *cropArena) CropHandle {
	best := NoCrop
	bestDist := math.Inf(1)

	field.each(func(h CropHandle, crop *Crop) {
		d := c.Bounds().Distance(crop.Bounds())
		if crop.Points > 1 {
			d /= 1 + float64(crop.Points)*valueBias
		}
		if d < bestDist {
			bestDist = d
			best = h
		}
	})
	return best
}

// think picks a target and sets the velocity for this tick.
func (c *Competitor) think(dt float64, field *cropArena, rng *rand.Rand) {
	c.cooldown -= dt

	target, ok := field.get(c.target)
	if !ok || c.cooldown <= 0 {
		c.target = c.acquire(field)
		c.cooldown = c.retargetEvery
		target, ok = field.get(c.target)
	}

	if !ok {
		// No crops: occasionally drift in a new direction, otherwise keep going.
		if rng.Float64() < c.wanderChance {
			c.VX = (rng.Float64() - 0.5) * c.Speed
			c.VY = (rng.Float64() - 0.5) * c.Speed
		}
		return
	}

	ax, ay := c.Center()
	tx, ty := target.Center()
	dx, dy := tx-ax, ty-ay
	dist := math.Hypot(dx, dy)
	if dist <= arriveEpsilon {
		c.VX, c.VY = 0, 0
		return
	}

	c.VX = dx / dist * c.Speed
	c.VY = dy / dist * c.Speed
	c.Facing = facingFor(c.VX, c.VY, c.Facing)
}

// move applies the velocity. A fully blocked move drops the target so the next
// tick re-acquires instead of pushing into the same obstacle forever.
func (c *Competitor) move(dt float64, obstacles []Obstacle) {
	if !resolveMove(&c.Body, c.VX, c.VY, dt, obstacles) {
		c.target = NoCrop
	}
}

// harvest collects every live crop the competitor overlaps.
func (c *Competitor) harvest(field *cropArena) int {
	picked := 0
	field.each(func(_ CropHandle, crop *Crop) {
		if c.Bounds().Overlaps(crop.Bounds()) {
			crop.Alive = false
			c.Score += crop.Points
			picked++
		}
	})
	return picked
}
