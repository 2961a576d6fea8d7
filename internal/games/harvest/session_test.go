package harvest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/vovakirdan/harvest/internal/config"
)

const testSeed = 12345

func newTestSession(t *testing.T, cfg config.HarvestConfig) *Session {
	t.Helper()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return NewSession(cfg, testSeed)
}

// cropUnderPlayer puts a one-point crop fully inside the player's bounds.
func cropUnderPlayer(s *Session) CropHandle {
	return s.crops.insert(Crop{
		Body:   Body{X: s.player.X + 12, Y: s.player.Y + 7, W: 10, H: 20},
		Kind:   "wheat",
		Points: 1,
	})
}

// cropUnderCompetitor puts a one-point crop fully inside the competitor's bounds.
func cropUnderCompetitor(s *Session) CropHandle {
	return s.crops.insert(Crop{
		Body:   Body{X: s.competitor.X + 20, Y: s.competitor.Y + 15, W: 10, H: 20},
		Kind:   "wheat",
		Points: 1,
	})
}

type heldKeys map[Direction]bool

func (h heldKeys) Held(d Direction) bool { return h[d] }

func TestNewSessionStartsInMenu(t *testing.T) {
	s := newTestSession(t, config.DefaultHarvestConfig())
	snap := s.Snapshot()

	if snap.State != StateMenu {
		t.Errorf("expected menu state, got %s", snap.State)
	}
	if snap.Level != 1 || snap.Goal != 15 || snap.Remaining != 60 {
		t.Errorf("expected level 1 (goal 15, 60s), got level %d goal %d remaining %f", snap.Level, snap.Goal, snap.Remaining)
	}
	if snap.Obstacles != 2 {
		t.Errorf("expected 2 obstacles on level 1, got %d", snap.Obstacles)
	}

	// Menu does not simulate
	res := s.Update(0.016, heldKeys{DirLeft: true})
	if len(res.Events) != 0 || s.Snapshot().Tick != 0 {
		t.Error("Update in menu should not advance the simulation")
	}
}

func TestStateTransitions(t *testing.T) {
	s := newTestSession(t, config.DefaultHarvestConfig())

	s.TogglePause()
	if s.State() != StateMenu {
		t.Errorf("pause toggle in menu should be ignored, got %s", s.State())
	}

	s.Start()
	if s.State() != StatePlaying || !s.Started() {
		t.Fatalf("expected playing after Start, got %s", s.State())
	}

	s.TogglePause()
	if s.State() != StatePaused {
		t.Fatalf("expected paused, got %s", s.State())
	}
	s.TogglePause()
	if s.State() != StatePlaying {
		t.Fatalf("expected playing after second toggle, got %s", s.State())
	}

	s.TogglePause()
	s.Start()
	if s.State() != StatePlaying {
		t.Errorf("Start should resume a paused session, got %s", s.State())
	}

	s.state = StateGameOver
	s.Start()
	if s.State() != StatePlaying || s.Level() != 1 {
		t.Errorf("Start after game over should begin a fresh run, got %s level %d", s.State(), s.Level())
	}

	s.Reset()
	if s.State() != StateMenu {
		t.Errorf("expected menu after Reset, got %s", s.State())
	}
}

func TestPauseFreezesSimulation(t *testing.T) {
	s := newTestSession(t, config.DefaultHarvestConfig())
	s.Start()
	for i := 0; i < 30; i++ {
		s.Update(0.016, heldKeys{DirRight: true})
	}

	s.TogglePause()
	before := s.Snapshot()
	for i := 0; i < 100; i++ {
		s.Update(0.016, heldKeys{DirLeft: true})
	}
	if after := s.Snapshot(); after != before {
		t.Errorf("paused session changed:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestUpdateClampsDelta(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
		want float64
	}{
		{"normal", 0.016, 0.016},
		{"long frame", 5, MaxStep},
		{"negative", -1, 0},
		{"NaN", math.NaN(), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t, config.DefaultHarvestConfig())
			s.Start()
			s.Update(tc.dt, nil)
			if got := s.Snapshot().Elapsed; math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("elapsed = %f, expected %f", got, tc.want)
			}
		})
	}
}

func TestPlayerMovesWithInput(t *testing.T) {
	s := newTestSession(t, config.DefaultHarvestConfig())
	s.Start()
	startX := s.player.X

	s.Update(0.02, heldKeys{DirLeft: true})

	if want := startX - 120*0.02; math.Abs(s.player.X-want) > 1e-9 {
		t.Errorf("player x = %f, expected %f", s.player.X, want)
	}
	if s.player.Facing != DirLeft {
		t.Errorf("expected facing left, got %v", s.player.Facing)
	}
}

func TestLevelAdvanceAfterFifteenCrops(t *testing.T) {
	s := newTestSession(t, config.DefaultHarvestConfig())
	s.Start()

	for i := 1; i <= 14; i++ {
		cropUnderPlayer(s)
		res := s.Update(0.016, nil)
		if res.PlayerPicked != 1 {
			t.Fatalf("tick %d: expected 1 pickup, got %d", i, res.PlayerPicked)
		}
	}
	if snap := s.Snapshot(); snap.Level != 1 || snap.Score != 14 {
		t.Fatalf("expected level 1 with score 14, got level %d score %d", snap.Level, snap.Score)
	}

	cropUnderPlayer(s)
	res := s.Update(0.016, nil)

	if !res.Has(EventLevelAdvanced) {
		t.Fatalf("expected level advance event, got %+v", res.Events)
	}
	snap := s.Snapshot()
	if snap.State != StatePlaying {
		t.Errorf("expected to remain playing, got %s", snap.State)
	}
	if snap.Level != 2 {
		t.Errorf("expected level 2, got %d", snap.Level)
	}
	if snap.Score != 0 || snap.AIScore != 0 {
		t.Errorf("expected scores reset, got %d/%d", snap.Score, snap.AIScore)
	}
	if snap.Obstacles != 3 {
		t.Errorf("expected 3 obstacles on level 2, got %d", snap.Obstacles)
	}
	if snap.Goal != 20 || snap.Remaining != 60 {
		t.Errorf("expected level 2 goal 20 and 60s, got goal %d remaining %f", snap.Goal, snap.Remaining)
	}
	if snap.Harvested != 15 {
		t.Errorf("harvested total should survive the advance, got %d", snap.Harvested)
	}
	if snap.Crops != 0 || snap.PowerUps != 0 {
		t.Errorf("expected empty field after advance, got %d crops %d power-ups", snap.Crops, snap.PowerUps)
	}
}

func TestCountdownExpiryIsGameOver(t *testing.T) {
	s := newTestSession(t, config.DefaultHarvestConfig())
	s.Start()

	s.score = 10
	s.competitor.Score = 8
	s.remaining = 0.02

	res := s.Update(0.02, nil)

	if s.State() != StateGameOver {
		t.Fatalf("expected game over, got %s", s.State())
	}
	if res.Has(EventWin) || !res.Has(EventGameOver) {
		t.Errorf("expected only a game over event, got %+v", res.Events)
	}
	if snap := s.Snapshot(); snap.Remaining != 0 || snap.Score != 10 || snap.AIScore != 8 {
		t.Errorf("unexpected final snapshot %+v", snap)
	}

	// Terminal state does not simulate
	tick := s.Snapshot().Tick
	s.Update(0.016, nil)
	if s.Snapshot().Tick != tick {
		t.Error("game over session should not tick")
	}
}

func TestTieGoesToCompetitor(t *testing.T) {
	s := newTestSession(t, config.DefaultHarvestConfig())
	s.Start()

	s.score = 14
	s.competitor.Score = 14
	cropUnderPlayer(s)
	cropUnderCompetitor(s)

	res := s.Update(0.016, nil)

	if res.PlayerPicked != 1 || res.AIPicked != 1 {
		t.Fatalf("expected both to pick up, got player %d ai %d", res.PlayerPicked, res.AIPicked)
	}
	if s.State() != StateGameOver {
		t.Errorf("expected game over on tie, got %s", s.State())
	}
	if res.Has(EventLevelAdvanced) {
		t.Error("level advanced despite competitor reaching the goal")
	}
	if s.Level() != 1 {
		t.Errorf("expected to stay on level 1, got %d", s.Level())
	}
}

func TestPlayerCollectsContestedCrop(t *testing.T) {
	s := newTestSession(t, config.DefaultHarvestConfig())
	s.Start()

	// Put the competitor on top of the player so both overlap one crop
	s.competitor.X = s.player.X - 8
	s.competitor.Y = s.player.Y - 8
	cropUnderPlayer(s)

	res := s.Update(0.016, nil)
	if res.PlayerPicked != 1 || res.AIPicked != 0 {
		t.Errorf("expected player to win the contested crop, got player %d ai %d", res.PlayerPicked, res.AIPicked)
	}
}

func TestWinOnFinalLevel(t *testing.T) {
	cfg := config.DefaultHarvestConfig()
	cfg.Levels = []config.LevelConfig{
		{Goal: 1, Time: 30, SpawnBase: 5, ExtraScarecrows: 0},
		{Goal: 2, Time: 30, SpawnBase: 5, ExtraScarecrows: 2},
	}
	s := newTestSession(t, cfg)
	s.Start()

	cropUnderPlayer(s)
	if res := s.Update(0.016, nil); !res.Has(EventLevelAdvanced) {
		t.Fatalf("expected advance to level 2, got %+v", res.Events)
	}

	cropUnderPlayer(s)
	s.Update(0.016, nil)
	cropUnderPlayer(s)
	res := s.Update(0.016, nil)

	if !res.Has(EventWin) || s.State() != StateWin {
		t.Errorf("expected win on final level, got %s with %+v", s.State(), res.Events)
	}
	if h := s.Snapshot().Harvested; h != 3 {
		t.Errorf("harvested = %d, expected 3", h)
	}
}

func TestCompetitorTargetsLoneCrop(t *testing.T) {
	cfg := config.DefaultHarvestConfig()
	for i := range cfg.Levels {
		cfg.Levels[i].SpawnBase = 100 // no spawns during the test
	}
	s := newTestSession(t, cfg)
	s.Start()

	h := s.crops.insert(Crop{Body: Body{X: 120, Y: 90, W: 10, H: 20}, Kind: "wheat", Points: 1})

	found := false
	for elapsed := 0.0; elapsed < cfg.Competitor.RetargetInterval; elapsed += 0.016 {
		s.Update(0.016, nil)
		if s.competitor.Target() == h {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("competitor did not target the lone crop within one retarget interval, target %+v", s.competitor.Target())
	}

	// And it actually goes for it
	for i := 0; i < 2000 && s.State() == StatePlaying && s.Snapshot().AIScore == 0; i++ {
		s.Update(0.016, nil)
	}
	if s.Snapshot().AIScore != 1 {
		t.Errorf("competitor never reached the crop, score %d", s.Snapshot().AIScore)
	}
}

func TestSpawnAccumulator(t *testing.T) {
	s := newTestSession(t, config.DefaultHarvestConfig())
	s.Start()
	lvl := s.levelConfig()

	if n := s.spawn(2.0, lvl); n != 2 {
		t.Errorf("expected 2 spawns from 2.0s at 0.8s interval, got %d", n)
	}
	if math.Abs(s.spawnAccum-0.4) > 1e-9 {
		t.Errorf("accumulator = %f, expected 0.4", s.spawnAccum)
	}
	if n := s.spawn(0.3, lvl); n != 0 {
		t.Errorf("expected no spawn below interval, got %d", n)
	}
	if n := s.spawn(0.15, lvl); n != 1 {
		t.Errorf("expected spawn when accumulator reaches interval, got %d", n)
	}
}

func TestSpawnPlacement(t *testing.T) {
	cfg := config.DefaultHarvestConfig()
	cfg.Spawn.PowerUpChance = 0.5
	s := newTestSession(t, cfg)
	s.Start()
	s.obstacles = obstacleLayout(config.MaxExtraScarecrows)

	for i := 0; i < 500; i++ {
		s.spawnCrop()
	}
	s.spawn(40, s.levelConfig())

	s.crops.each(func(_ CropHandle, c *Crop) {
		if math.Mod(c.X, Tile) != 0 || math.Mod(c.Y, Tile) != 0 {
			t.Errorf("crop at (%f,%f) is not tile aligned", c.X, c.Y)
		}
		if c.X < Tile || c.Y < Tile || c.X > FieldW-2*Tile || c.Y > FieldH-2*Tile {
			t.Errorf("crop at (%f,%f) outside the spawn margin", c.X, c.Y)
		}
		if blocked(c.Bounds(), s.obstacles) {
			t.Errorf("crop at (%f,%f) placed on an obstacle", c.X, c.Y)
		}
	})
	if len(s.powerUps) == 0 {
		t.Error("expected some power-ups at 50% chance")
	}
}

func TestCropTableWeights(t *testing.T) {
	table := newCropTable(config.DefaultHarvestConfig().Crops)
	rng := rand.New(rand.NewSource(3))

	counts := map[string]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[table.pick(rng).Name]++
	}

	expected := map[string]float64{"wheat": 0.6, "pumpkin": 0.3, "golden_apple": 0.1}
	for name, want := range expected {
		got := float64(counts[name]) / n
		if math.Abs(got-want) > 0.02 {
			t.Errorf("%s frequency = %.3f, expected about %.2f", name, got, want)
		}
	}
}

func TestObstacleLayout(t *testing.T) {
	tests := []struct {
		extra    int
		expected int
	}{
		{-1, 2},
		{0, 2},
		{1, 3},
		{3, 5},
		{9, 5},
	}

	for _, tc := range tests {
		if got := len(obstacleLayout(tc.extra)); got != tc.expected {
			t.Errorf("obstacleLayout(%d) = %d obstacles, expected %d", tc.extra, got, tc.expected)
		}
	}

	// Nothing starts inside a scarecrow
	layout := obstacleLayout(config.MaxExtraScarecrows)
	f := newFarmer(config.DefaultHarvestConfig().Player)
	c := newCompetitor(competitorTestConfig())
	if blocked(f.Bounds(), layout) || blocked(c.Bounds(), layout) {
		t.Error("a farmer starts overlapping a scarecrow")
	}
}

func TestNoObstacleOverlapDuringPlay(t *testing.T) {
	cfg := config.DefaultHarvestConfig()
	cfg.Levels[0].ExtraScarecrows = config.MaxExtraScarecrows
	s := newTestSession(t, cfg)
	s.Start()

	rng := rand.New(rand.NewSource(11))
	dirs := []Direction{DirUp, DirDown, DirLeft, DirRight}
	keys := heldKeys{}

	for i := 0; i < 3000 && s.State() == StatePlaying; i++ {
		if i%20 == 0 {
			keys = heldKeys{dirs[rng.Intn(4)]: true, dirs[rng.Intn(4)]: true}
		}
		s.Update(0.016, keys)

		if blocked(s.player.Bounds(), s.obstacles) {
			t.Fatalf("tick %d: player overlaps an obstacle at (%f,%f)", i, s.player.X, s.player.Y)
		}
		if blocked(s.competitor.Bounds(), s.obstacles) {
			t.Fatalf("tick %d: competitor overlaps an obstacle at (%f,%f)", i, s.competitor.X, s.competitor.Y)
		}
	}
}

func TestDeterminism(t *testing.T) {
	cfg := config.DefaultHarvestConfig()
	s1 := NewSession(cfg, 777)
	s2 := NewSession(cfg, 777)
	s1.Start()
	s2.Start()

	for i := 0; i < 2000; i++ {
		keys := heldKeys{}
		switch (i / 90) % 4 {
		case 0:
			keys[DirLeft] = true
		case 1:
			keys[DirUp] = true
		case 2:
			keys[DirRight] = true
		case 3:
			keys[DirDown] = true
		}
		s1.Update(0.016, keys)
		s2.Update(0.016, keys)
	}

	if a, b := s1.Snapshot(), s2.Snapshot(); a != b {
		t.Errorf("snapshots differ:\n%+v\n%+v", a, b)
	}
}

func TestSetLevels(t *testing.T) {
	s := newTestSession(t, config.DefaultHarvestConfig())

	levels := []config.LevelConfig{{Goal: 3, Time: 20, SpawnBase: 0.5, ExtraScarecrows: 2}}
	if err := s.SetLevels(levels); err != nil {
		t.Fatalf("SetLevels before start failed: %v", err)
	}
	snap := s.Snapshot()
	if snap.Goal != 3 || snap.Remaining != 20 || snap.Obstacles != 4 || snap.Levels != 1 {
		t.Errorf("level table not applied: %+v", snap)
	}

	if err := s.SetLevels(nil); err == nil {
		t.Error("expected error for empty level table")
	}

	s.Start()
	if err := s.SetLevels(config.DefaultLevels()); err != ErrLevelsLocked {
		t.Errorf("expected ErrLevelsLocked after start, got %v", err)
	}
}

func TestNewSessionSlowsFastCompetitor(t *testing.T) {
	cfg := config.DefaultHarvestConfig()
	cfg.Competitor.Speed = 500
	s := NewSession(cfg, testSeed)
	s.Start()
	s.Update(0.016, nil)

	if s.competitor.Speed >= s.player.Speed {
		t.Errorf("competitor speed %f not below player speed %f", s.competitor.Speed, s.player.Speed)
	}
	if s.State() != StatePlaying {
		t.Errorf("expected playing, got %s", s.State())
	}
}

func TestPlacementFallsBackToLastCandidate(t *testing.T) {
	cfg := config.DefaultHarvestConfig()
	cfg.Spawn.PlacementAttempts = 3
	s := newTestSession(t, cfg)
	s.Start()
	s.obstacles = []Obstacle{{Body: Body{W: FieldW, H: FieldH, Alive: true}}}

	s.rng = rand.New(rand.NewSource(42))
	ref := rand.New(rand.NewSource(42))
	var wantX, wantY float64
	for i := 0; i < cfg.Spawn.PlacementAttempts; i++ {
		wantX = tileCoord(ref, FieldW)
		wantY = tileCoord(ref, FieldH)
	}

	x, y := s.placement(10, 20)
	if x != wantX || y != wantY {
		t.Errorf("placement = (%f,%f), want last candidate (%f,%f)", x, y, wantX, wantY)
	}

	before := s.crops.len()
	if n := s.spawn(4.2, s.levelConfig()); n != 5 {
		t.Errorf("expected 5 spawns on a blocked field, got %d", n)
	}
	if got := s.crops.len() - before; got != 5 {
		t.Errorf("expected 5 new crops, got %d", got)
	}
}

func TestSpawnIntervalShrinksWithinLevel(t *testing.T) {
	cfg := config.DefaultHarvestConfig()
	cfg.Spawn.PowerUpChance = 0
	cfg.Levels = []config.LevelConfig{{Goal: 1000, Time: 60, SpawnBase: 0.8}}
	s := newTestSession(t, cfg)
	s.Start()
	lvl := s.levelConfig()

	s.elapsed, s.spawnAccum = 0, 0
	early := s.spawn(6.0, lvl)

	s.elapsed, s.spawnAccum = lvl.Time*0.9, 0
	late := s.spawn(6.0, lvl)

	// 0.8s at level start, 0.8 - 0.5*0.9 = 0.35s near the end
	if early != 7 || late != 17 {
		t.Errorf("expected 7 early and 17 late spawns over 6s, got %d and %d", early, late)
	}

	s.Reset()
	s.Start()
	spawned := func(seconds float64) int {
		total := 0
		for i, n := 0, int(seconds/0.02); i < n; i++ {
			total += s.Update(0.02, nil).Spawned
		}
		return total
	}
	first := spawned(10)
	s.elapsed = lvl.Time - 11
	last := spawned(10)
	if last <= first {
		t.Errorf("expected more spawns late in the level, got %d early and %d late", first, last)
	}
}
