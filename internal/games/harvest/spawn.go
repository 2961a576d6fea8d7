package harvest

import (
	"math/rand"

	"github.com/vovakirdan/harvest/internal/config"
	"github.com/vovakirdan/harvest/internal/core"
)

// spawn advances the spawn accumulator and spawns one crop per elapsed interval.
// Each crop spawn also rolls for a power-up. Returns the number of crops spawned.
func (s *Session) spawn(dt float64, lvl config.LevelConfig) int {
	interval := s.schedule.Interval(lvl.SpawnBase, s.elapsed, lvl.Time)

	s.spawnAccum += dt
	spawned := 0
	for s.spawnAccum >= interval {
		s.spawnAccum -= interval
		s.spawnCrop()
		spawned++

		if s.rng.Float64() < s.cfg.Spawn.PowerUpChance {
			s.spawnPowerUp()
		}
	}
	return spawned
}

func (s *Session) spawnCrop() CropHandle {
	ct := s.cropTypes.pick(s.rng)
	x, y := s.placement(ct.Width, ct.Height)
	return s.crops.insert(newCrop(ct, x, y, s.rng))
}

func (s *Session) spawnPowerUp() {
	x, y := s.placement(powerUpSize, powerUpSize)
	s.powerUps = append(s.powerUps, newPowerUp(PowerUpSpeed, x, y))
}

// placement picks a tile-aligned position that does not overlap an obstacle.
// After the configured number of attempts the last candidate is used as is.
func (s *Session) placement(w, h float64) (float64, float64) {
	attempts := max(s.cfg.Spawn.PlacementAttempts, 1)

	var x, y float64
	for i := 0; i < attempts; i++ {
		x = tileCoord(s.rng, FieldW)
		y = tileCoord(s.rng, FieldH)
		if !blocked(core.NewRectF(x, y, w, h), s.obstacles) {
			return x, y
		}
	}
	return x, y
}

// tileCoord returns a random tile-aligned coordinate keeping a one-tile margin.
func tileCoord(rng *rand.Rand, extent float64) float64 {
	tiles := int((extent - 2*Tile) / Tile)
	return float64(rng.Intn(tiles))*Tile + Tile
}
