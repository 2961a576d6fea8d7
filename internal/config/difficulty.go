package config

import "math"

// SpawnSchedule calculates the crop spawn interval from level progress.
// The interval falls linearly from a level's spawn_base as the countdown runs.
type SpawnSchedule struct {
	ramp  float64
	floor float64
}

// NewSpawnSchedule creates a schedule from spawn settings.
func NewSpawnSchedule(cfg SpawnConfig) *SpawnSchedule {
	floor := cfg.MinInterval
	if floor <= 0 {
		floor = DefaultHarvestConfig().Spawn.MinInterval
	}
	return &SpawnSchedule{
		ramp:  math.Max(cfg.Ramp, 0),
		floor: floor,
	}
}

// Progress returns how far through a level the clock is, in [0, 1].
func (s *SpawnSchedule) Progress(elapsed, levelTime float64) float64 {
	if levelTime <= 0 {
		return 1 // Prevent division by zero
	}
	return clampF(elapsed/levelTime, 0.0, 1.0)
}

// Interval returns the current spawn interval: base - ramp*progress, never below the floor.
func (s *SpawnSchedule) Interval(base, elapsed, levelTime float64) float64 {
	interval := base - s.ramp*s.Progress(elapsed, levelTime)
	return math.Max(interval, s.floor)
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
