// Package config provides YAML-based game configuration loading, validation and
// difficulty presets for Harvest Rush.
package config

import (
	"errors"
	"fmt"
)

// MaxExtraScarecrows is the number of optional scarecrow positions a level can enable.
const MaxExtraScarecrows = 3

// HarvestConfig contains all tunable parameters for the game.
type HarvestConfig struct {
	Player     PlayerConfig     `yaml:"player"`
	Competitor CompetitorConfig `yaml:"competitor"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Boost      BoostConfig      `yaml:"boost"`
	Crops      []CropConfig     `yaml:"crops"`
	Levels     []LevelConfig    `yaml:"levels"`
}

// PlayerConfig defines the human-controlled farmer.
type PlayerConfig struct {
	Speed float64 `yaml:"speed"` // World units per second
}

// CompetitorConfig defines the AI farmer.
type CompetitorConfig struct {
	Speed            float64 `yaml:"speed"`
	RetargetInterval float64 `yaml:"retarget_interval"` // Seconds
	WanderChance     float64 `yaml:"wander_chance"`     // Per tick, 0-1
}

// SpawnConfig defines crop and power-up spawning.
type SpawnConfig struct {
	Ramp              float64 `yaml:"ramp"`         // Interval reduction at full level progress
	MinInterval       float64 `yaml:"min_interval"` // Floor for the spawn interval
	PowerUpChance     float64 `yaml:"powerup_chance"`
	PlacementAttempts int     `yaml:"placement_attempts"`
}

// BoostConfig defines the speed boost power-up.
type BoostConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	Duration   float64 `yaml:"duration"` // Seconds
}

// CropConfig defines one collectible crop type.
type CropConfig struct {
	Name   string  `yaml:"name"`
	Points int     `yaml:"points"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Weight int     `yaml:"weight"` // Relative spawn weight
}

// LevelConfig defines one level. Levels are numbered from 1 in play.
type LevelConfig struct {
	Goal            int     `yaml:"goal"`             // Points needed to clear the level
	Time            float64 `yaml:"time"`             // Time budget in seconds
	SpawnBase       float64 `yaml:"spawn_base"`       // Spawn interval at level start
	ExtraScarecrows int     `yaml:"extra_scarecrows"` // 0-3 additional obstacles
}

// Validation errors.
var (
	ErrNoLevels      = errors.New("config: at least one level is required")
	ErrNoCrops       = errors.New("config: at least one crop type is required")
	ErrSpeedBalance  = errors.New("config: competitor speed must be below player speed")
	ErrInvalidBoost  = errors.New("config: boost multiplier and duration must be positive")
	ErrInvalidSpawn  = errors.New("config: spawn min_interval must be positive")
	ErrInvalidPlayer = errors.New("config: player and competitor speeds must be positive")
)

// Validate checks the configuration for values the simulation cannot run with.
func (c HarvestConfig) Validate() error {
	if c.Player.Speed <= 0 || c.Competitor.Speed <= 0 {
		return ErrInvalidPlayer
	}
	if c.Competitor.Speed >= c.Player.Speed {
		return fmt.Errorf("%w (competitor %.0f, player %.0f)", ErrSpeedBalance, c.Competitor.Speed, c.Player.Speed)
	}
	if c.Boost.Multiplier <= 0 || c.Boost.Duration <= 0 {
		return ErrInvalidBoost
	}
	if c.Spawn.MinInterval <= 0 {
		return ErrInvalidSpawn
	}
	if len(c.Crops) == 0 {
		return ErrNoCrops
	}
	for i, crop := range c.Crops {
		if crop.Points <= 0 || crop.Weight <= 0 || crop.Width <= 0 || crop.Height <= 0 {
			return fmt.Errorf("config: crop %d (%s): points, weight and size must be positive", i, crop.Name)
		}
	}
	return ValidateLevels(c.Levels)
}

// WithDefaults returns a copy of c in which every section the simulation cannot
// run with is replaced by the built-in default, and the competitor is slowed
// below the player.
func (c HarvestConfig) WithDefaults() HarvestConfig {
	d := DefaultHarvestConfig()
	if c.Player.Speed <= 0 {
		c.Player = d.Player
	}
	if c.Competitor.Speed <= 0 || c.Competitor.RetargetInterval <= 0 {
		c.Competitor = d.Competitor
	}
	if limit := c.Player.Speed * maxCompetitorRatio; c.Competitor.Speed >= c.Player.Speed {
		c.Competitor.Speed = limit
	}
	if c.Boost.Multiplier <= 0 || c.Boost.Duration <= 0 {
		c.Boost = d.Boost
	}
	if c.Spawn.MinInterval <= 0 {
		c.Spawn.MinInterval = d.Spawn.MinInterval
	}
	if c.Spawn.PlacementAttempts <= 0 {
		c.Spawn.PlacementAttempts = d.Spawn.PlacementAttempts
	}
	if len(c.Crops) == 0 {
		c.Crops = d.Crops
	}
	if ValidateLevels(c.Levels) != nil {
		c.Levels = d.Levels
	}
	return c
}

// ValidateLevels checks a level table on its own, as loaded from an external document.
func ValidateLevels(levels []LevelConfig) error {
	if len(levels) == 0 {
		return ErrNoLevels
	}
	for i, lvl := range levels {
		switch {
		case lvl.Goal <= 0:
			return fmt.Errorf("config: level %d: goal must be positive", i+1)
		case lvl.Time <= 0:
			return fmt.Errorf("config: level %d: time must be positive", i+1)
		case lvl.SpawnBase <= 0:
			return fmt.Errorf("config: level %d: spawn_base must be positive", i+1)
		case lvl.ExtraScarecrows < 0 || lvl.ExtraScarecrows > MaxExtraScarecrows:
			return fmt.Errorf("config: level %d: extra_scarecrows must be 0-%d", i+1, MaxExtraScarecrows)
		}
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ErrUnknownPreset is returned by ParsePreset for a name that is not a preset.
var ErrUnknownPreset = errors.New("config: unknown difficulty preset")

// ParsePreset converts a CLI value to a preset.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return DifficultyPreset(s), nil
	default:
		return "", fmt.Errorf("%w %q (want easy, normal, hard or fixed)", ErrUnknownPreset, s)
	}
}
