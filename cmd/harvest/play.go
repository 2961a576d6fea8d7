package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/harvest/internal/core"
	"github.com/vovakirdan/harvest/internal/platform/tui"
	"github.com/vovakirdan/harvest/internal/storage"
)

var flagLevels string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start a game of Harvest Rush in this terminal.

Controls:
  Arrows/WASD  - Move (hold to keep moving)
  Enter/Space  - Start or resume
  P/Esc        - Pause
  R            - Back to the menu
  Tab          - Results ledger
  Ctrl+S       - Save a screenshot to ~/.harvest/screenshots
  Q/Ctrl+C     - Quit

Difficulty options:
  easy   - Slower rival, gentler spawn ramp
  normal - Config as written
  hard   - Faster, sharper rival and a steeper ramp
  fixed  - Spawn interval never ramps

A level table can be loaded from a file or URL with --levels. It replaces
the built-in levels if it arrives before the first run starts.

Examples:
  harvest play
  harvest play --difficulty easy
  harvest play --levels ./levels.yaml
  harvest play --seed 42 --log-file harvest.log`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagLevels, "levels", "", "Level table YAML file or http(s) URL")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	gameCfg, err := loadGameConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger("harvest", io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open results database: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("starting game", "seed", seed, "difficulty", flagDifficulty, "levels", flagLevels)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return tui.Run(tui.Options{
		Config: gameCfg,
		Runtime: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  height,
			TickRate: flagFPS,
			Seed:     seed,
		},
		Store:        store,
		Logger:       logger,
		LevelsSource: flagLevels,
		Context:      ctx,
	})
}
