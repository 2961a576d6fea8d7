package harvest

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/harvest/internal/config"
)

// swayRate is the crop sway phase advance in radians per second.
const swayRate = 2.0

// cropTable picks crop types by relative weight.
type cropTable struct {
	types []config.CropConfig
	total int
}

func newCropTable(types []config.CropConfig) cropTable {
	t := cropTable{types: types}
	for _, ct := range types {
		t.total += ct.Weight
	}
	return t
}

// pick returns a weighted random crop type.
func (t cropTable) pick(rng *rand.Rand) config.CropConfig {
	if t.total <= 0 {
		return t.types[rng.Intn(len(t.types))]
	}

	roll := rng.Intn(t.total)
	for _, ct := range t.types {
		if roll < ct.Weight {
			return ct
		}
		roll -= ct.Weight
	}
	return t.types[len(t.types)-1]
}

// newCrop builds a crop of the given type at (x, y) with a random sway phase.
func newCrop(ct config.CropConfig, x, y float64, rng *rand.Rand) Crop {
	return Crop{
		Body: Body{
			X: x, Y: y,
			W: ct.Width, H: ct.Height,
			Alive: true,
		},
		Kind:   ct.Name,
		Points: ct.Points,
		Sway:   rng.Float64() * 2 * math.Pi,
	}
}
