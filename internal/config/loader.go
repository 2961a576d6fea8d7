package config

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxLevelDocBytes caps remote level documents.
const maxLevelDocBytes = 1 << 20

// Load loads the game configuration.
// Search order: customPath -> ~/.harvest/configs/harvest.yaml -> ./configs/harvest.yaml -> embedded default
//
// Files are decoded on top of the defaults, so a partial document only overrides
// the keys it names. A custom path that is missing or invalid is an error; the
// implicit locations are skipped when unusable.
func Load(customPath string) (HarvestConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return HarvestConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return HarvestConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("harvest.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := Parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "harvest.yaml")); err == nil {
		if cfg, err := Parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := Parse(defaultHarvestYAML)
	if err != nil {
		return DefaultHarvestConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Parse decodes a YAML document over the built-in defaults and validates the result.
func Parse(data []byte) (HarvestConfig, error) {
	cfg := DefaultHarvestConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return HarvestConfig{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return HarvestConfig{}, err
	}
	return cfg, nil
}

// levelsDocument is the external level-table format. It is a subset of the full
// config document, so a complete harvest.yaml is also a valid level source.
type levelsDocument struct {
	Levels []LevelConfig `yaml:"levels"`
}

// ParseLevels decodes and validates a level table document.
func ParseLevels(data []byte) ([]LevelConfig, error) {
	var doc levelsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := ValidateLevels(doc.Levels); err != nil {
		return nil, err
	}
	return doc.Levels, nil
}

// LoadLevels reads a level table from a file path or an http(s) URL.
func LoadLevels(ctx context.Context, source string) ([]LevelConfig, error) {
	data, err := readSource(ctx, source)
	if err != nil {
		return nil, err
	}
	levels, err := ParseLevels(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse levels %s: %w", source, err)
	}
	return levels, nil
}

// LevelsResult is delivered by LoadLevelsAsync.
type LevelsResult struct {
	Source string
	Levels []LevelConfig
	Err    error
}

// LoadLevelsAsync loads a level table in the background.
// The returned channel yields exactly one result and is then closed.
// Cancelling ctx aborts an in-flight HTTP request.
func LoadLevelsAsync(ctx context.Context, source string) <-chan LevelsResult {
	out := make(chan LevelsResult, 1)
	go func() {
		defer close(out)
		levels, err := LoadLevels(ctx, source)
		out <- LevelsResult{Source: source, Levels: levels, Err: err}
	}()
	return out
}

func readSource(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read levels %s: %w", source, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", source, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch levels %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch levels %s: status %s", source, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLevelDocBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read levels %s: %w", source, err)
	}
	return data, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".harvest", "configs", filename)
}

// ApplyPreset modifies the config based on a difficulty preset.
// Presets scale competitor speed and the spawn ramp only; the retarget cadence
// stays fixed. The competitor is never allowed to reach the player's speed.
func ApplyPreset(cfg *HarvestConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Competitor.Speed *= 0.75
		cfg.Spawn.Ramp *= 0.8
	case DifficultyHard:
		cfg.Competitor.Speed *= 1.5
		cfg.Spawn.Ramp *= 1.2
	case DifficultyFixed:
		cfg.Spawn.Ramp = 0
	}

	if limit := cfg.Player.Speed * maxCompetitorRatio; cfg.Competitor.Speed > limit {
		cfg.Competitor.Speed = limit
	}
}

// maxCompetitorRatio bounds competitor speed relative to the player after presets.
const maxCompetitorRatio = 0.9
