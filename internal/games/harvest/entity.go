// Package harvest implements the farmer-vs-AI crop harvesting simulation: entities,
// the competitor AI, spawning, power-ups, the level/session state machine and the
// frame loop that drives them.
package harvest

import (
	"math"

	"github.com/vovakirdan/harvest/internal/core"
)

// Playfield dimensions in world units.
const (
	FieldW = 900
	FieldH = 540
	Tile   = 30 // Spawn grid size
)

// Entity sizes in world units.
const (
	farmerSize     = 34
	competitorSize = 50
	powerUpSize    = 25
	scarecrowW     = 26
	scarecrowH     = 46
)

// Direction is one of the four movement directions.
// It is also used as the cosmetic facing of the farmers.
type Direction int

const (
	DirDown Direction = iota
	DirUp
	DirLeft
	DirRight
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirDown:
		return "down"
	case DirUp:
		return "up"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "?"
	}
}

// facingFor derives a facing from the dominant axis of a velocity.
// A zero velocity keeps the current facing.
func facingFor(vx, vy float64, current Direction) Direction {
	switch {
	case vx == 0 && vy == 0:
		return current
	case math.Abs(vx) > math.Abs(vy):
		if vx > 0 {
			return DirRight
		}
		return DirLeft
	case vy > 0:
		return DirDown
	default:
		return DirUp
	}
}

// Collidable is anything with a world-space bounding box.
type Collidable interface {
	Bounds() core.RectF
}

// Drawable is anything that can draw itself onto a Surface.
type Drawable interface {
	Draw(s Surface)
}

// Body is the position, size and liveness shared by every simulated object.
type Body struct {
	X, Y  float64
	W, H  float64
	Alive bool
}

// Bounds returns the body's bounding box.
func (b *Body) Bounds() core.RectF {
	return core.NewRectF(b.X, b.Y, b.W, b.H)
}

// Center returns the center point of the body.
func (b *Body) Center() (float64, float64) {
	return b.Bounds().Center()
}

// Crop is a collectible. Only Alive changes after spawning; Sway is cosmetic.
type Crop struct {
	Body
	Kind   string
	Points int
	Sway   float64
}

// PowerUpKind identifies a power-up effect.
type PowerUpKind int

const (
	PowerUpSpeed PowerUpKind = iota
)

// String returns the power-up name.
func (k PowerUpKind) String() string {
	if k == PowerUpSpeed {
		return "speed"
	}
	return "?"
}

// PowerUp is a pickup that applies a timed effect to the player.
type PowerUp struct {
	Body
	Kind PowerUpKind
}

// Obstacle is a static scarecrow that blocks movement.
type Obstacle struct {
	Body
}

func newObstacle(x, y float64) Obstacle {
	return Obstacle{Body: Body{X: x, Y: y, W: scarecrowW, H: scarecrowH, Alive: true}}
}

// blocked reports whether r overlaps any obstacle.
func blocked(r core.RectF, obstacles []Obstacle) bool {
	for i := range obstacles {
		if r.Overlaps(obstacles[i].Bounds()) {
			return true
		}
	}
	return false
}
