package harvest

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/harvest/internal/config"
)

func competitorTestConfig() config.CompetitorConfig {
	return config.DefaultHarvestConfig().Competitor
}

// placeCrop inserts a crop whose center is at (cx, cy).
func placeCrop(field *cropArena, cx, cy float64, points int) CropHandle {
	return field.insert(Crop{
		Body:   Body{X: cx - 5, Y: cy - 5, W: 10, H: 10},
		Kind:   "test",
		Points: points,
	})
}

// competitorAt returns a competitor whose center is at (cx, cy).
func competitorAt(cx, cy float64) Competitor {
	c := newCompetitor(competitorTestConfig())
	c.X = cx - c.W/2
	c.Y = cy - c.H/2
	return c
}

func TestAcquireEmptyField(t *testing.T) {
	var field cropArena
	c := competitorAt(400, 300)

	if h := c.acquire(&field); h != NoCrop {
		t.Errorf("expected no target on empty field, got %+v", h)
	}
}

func TestAcquireNeverSelectsDeadCrop(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for round := 0; round < 200; round++ {
		var field cropArena
		c := competitorAt(rng.Float64()*FieldW, rng.Float64()*FieldH)

		n := 1 + rng.Intn(12)
		handles := make([]CropHandle, 0, n)
		for i := 0; i < n; i++ {
			handles = append(handles, placeCrop(&field, rng.Float64()*FieldW, rng.Float64()*FieldH, 1+rng.Intn(5)))
		}

		live := 0
		for _, h := range handles {
			crop, _ := field.get(h)
			if rng.Intn(2) == 0 {
				crop.Alive = false
			} else {
				live++
			}
		}

		got := c.acquire(&field)
		if live == 0 {
			if got != NoCrop {
				t.Fatalf("round %d: expected no target with all crops dead, got %+v", round, got)
			}
			continue
		}
		if _, ok := field.get(got); !ok {
			t.Fatalf("round %d: acquired handle %+v does not resolve to a live crop", round, got)
		}
	}
}

func TestAcquirePrefersValueAtEqualDistance(t *testing.T) {
	var field cropArena
	c := competitorAt(450, 270)

	placeCrop(&field, 350, 270, 1)            // wheat, 100 left
	pumpkin := placeCrop(&field, 550, 270, 3) // pumpkin, 100 right

	if got := c.acquire(&field); got != pumpkin {
		t.Errorf("expected higher-value crop %+v, got %+v", pumpkin, got)
	}
}

func TestAcquireValueBeatsSlightlyCloser(t *testing.T) {
	var field cropArena
	c := competitorAt(450, 270)

	placeCrop(&field, 450, 370, 1)          // 100 away, adjusted 100
	apple := placeCrop(&field, 600, 270, 5) // 150 away, adjusted 75

	if got := c.acquire(&field); got != apple {
		t.Errorf("expected golden apple %+v, got %+v", apple, got)
	}
}

func TestAcquireNearestAmongEqualValue(t *testing.T) {
	var field cropArena
	c := competitorAt(450, 270)

	near := placeCrop(&field, 480, 270, 1)
	placeCrop(&field, 700, 270, 1)

	if got := c.acquire(&field); got != near {
		t.Errorf("expected nearest crop %+v, got %+v", near, got)
	}
}

func TestThinkRetargetsWhenTargetSwept(t *testing.T) {
	var field cropArena
	rng := rand.New(rand.NewSource(1))
	c := competitorAt(450, 270)

	first := placeCrop(&field, 500, 270, 1)
	second := placeCrop(&field, 200, 270, 1)

	c.think(0.016, &field, rng)
	if c.Target() != first {
		t.Fatalf("expected first target %+v, got %+v", first, c.Target())
	}

	crop, _ := field.get(first)
	crop.Alive = false
	field.sweep()

	// Cooldown has not expired, but the target is gone
	c.think(0.016, &field, rng)
	if c.Target() != second {
		t.Errorf("expected immediate retarget to %+v, got %+v", second, c.Target())
	}
}

func TestThinkRetargetsOnInterval(t *testing.T) {
	var field cropArena
	rng := rand.New(rand.NewSource(1))
	c := competitorAt(450, 270)

	placeCrop(&field, 650, 270, 1)
	c.think(0.016, &field, rng)

	// A much better crop appears; it is only picked up at the next scheduled retarget
	better := placeCrop(&field, 460, 280, 5)
	c.think(0.5, &field, rng)
	if c.Target() == better {
		t.Fatal("retargeted before the interval elapsed")
	}

	c.think(0.6, &field, rng)
	if c.Target() != better {
		t.Errorf("expected retarget to %+v after interval, got %+v", better, c.Target())
	}
}

func TestThinkVelocityTowardTarget(t *testing.T) {
	var field cropArena
	rng := rand.New(rand.NewSource(1))
	c := competitorAt(450, 270)

	placeCrop(&field, 450, 470, 1) // straight down
	c.think(0.016, &field, rng)

	if c.VX != 0 || c.VY != c.Speed {
		t.Errorf("expected velocity (0,%f), got (%f,%f)", c.Speed, c.VX, c.VY)
	}
	if c.Facing != DirDown {
		t.Errorf("expected facing down, got %v", c.Facing)
	}
}

func TestThinkStopsOnArrival(t *testing.T) {
	var field cropArena
	rng := rand.New(rand.NewSource(1))
	c := competitorAt(450, 270)
	c.VX, c.VY = 30, 30

	placeCrop(&field, 451, 270, 1)
	c.think(0.016, &field, rng)

	if c.VX != 0 || c.VY != 0 {
		t.Errorf("expected zero velocity within epsilon, got (%f,%f)", c.VX, c.VY)
	}
}

func TestThinkWandersWithinHalfSpeed(t *testing.T) {
	var field cropArena
	rng := rand.New(rand.NewSource(5))
	c := competitorAt(450, 270)
	c.wanderChance = 1

	for i := 0; i < 100; i++ {
		c.think(0.016, &field, rng)
		limit := c.Speed / 2
		if c.VX < -limit || c.VX > limit || c.VY < -limit || c.VY > limit {
			t.Fatalf("wander velocity (%f,%f) outside ±%f", c.VX, c.VY, limit)
		}
	}
	if c.Target() != NoCrop {
		t.Errorf("expected no target, got %+v", c.Target())
	}
}

func TestArenaStaleHandle(t *testing.T) {
	var field cropArena
	h := placeCrop(&field, 100, 100, 1)

	crop, ok := field.get(h)
	if !ok {
		t.Fatal("fresh handle should resolve")
	}
	crop.Alive = false

	if _, ok := field.get(h); ok {
		t.Error("dead crop should not resolve")
	}
	if removed := field.sweep(); removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	reused := placeCrop(&field, 200, 200, 3)
	if reused.Slot != h.Slot {
		t.Fatalf("expected slot %d to be reused, got %d", h.Slot, reused.Slot)
	}
	if _, ok := field.get(h); ok {
		t.Error("stale handle resolved to the crop that reused its slot")
	}
	if _, ok := field.get(reused); !ok {
		t.Error("new handle should resolve")
	}
	if _, ok := field.get(NoCrop); ok {
		t.Error("NoCrop should never resolve")
	}
}
