package config

import (
	_ "embed"
)

//go:embed defaults/harvest.yaml
var defaultHarvestYAML []byte

// DefaultHarvestConfig returns the built-in configuration.
// It mirrors defaults/harvest.yaml and is used when the embedded file cannot be parsed.
func DefaultHarvestConfig() HarvestConfig {
	return HarvestConfig{
		Player: PlayerConfig{
			Speed: 120,
		},
		Competitor: CompetitorConfig{
			Speed:            60,
			RetargetInterval: 1.0,
			WanderChance:     0.02,
		},
		Spawn: SpawnConfig{
			Ramp:              0.5,
			MinInterval:       0.15,
			PowerUpChance:     0.05,
			PlacementAttempts: 10,
		},
		Boost: BoostConfig{
			Multiplier: 2,
			Duration:   5,
		},
		Crops: []CropConfig{
			{Name: "wheat", Points: 1, Width: 10, Height: 20, Weight: 6},
			{Name: "pumpkin", Points: 3, Width: 12, Height: 16, Weight: 3},
			{Name: "golden_apple", Points: 5, Width: 13, Height: 15, Weight: 1},
		},
		Levels: DefaultLevels(),
	}
}

// DefaultLevels returns the built-in three-level table.
func DefaultLevels() []LevelConfig {
	return []LevelConfig{
		{Goal: 15, Time: 60, SpawnBase: 0.8, ExtraScarecrows: 0},
		{Goal: 20, Time: 60, SpawnBase: 0.7, ExtraScarecrows: 1},
		{Goal: 25, Time: 55, SpawnBase: 0.6, ExtraScarecrows: 3},
	}
}

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return defaultHarvestYAML
}
