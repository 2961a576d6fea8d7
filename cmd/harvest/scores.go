package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/harvest/internal/platform/tui"
	"github.com/vovakirdan/harvest/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresPlain bool
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the results ledger",
	Long: `Display the best recorded runs and overall stats.

In a terminal the interactive scoreboard opens; use --plain for text output.

Examples:
  harvest scores
  harvest scores --plain --limit 5
  harvest scores --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to print with --plain")
	scoresCmd.Flags().BoolVar(&flagScoresPlain, "plain", false, "Print a text table instead of the interactive board")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all recorded runs")
}

func runScores(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening results database: %w", err)
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearRuns(); err != nil {
			return err
		}
		fmt.Println("Results ledger cleared.")
		return nil
	}

	fd := int(os.Stdout.Fd())
	if !flagScoresPlain && term.IsTerminal(fd) {
		width, height, sizeErr := term.GetSize(fd)
		if sizeErr != nil {
			width, height = 80, 24
		}
		_, err := tui.RunScoreboard(store, width, height)
		return err
	}

	return printScores(store, flagScoresLimit)
}

// printScores writes the best runs and the ledger stats as plain text.
func printScores(store *storage.Store, limit int) error {
	runs, err := store.TopRuns(limit)
	if err != nil {
		return fmt.Errorf("retrieving runs: %w", err)
	}

	fmt.Println("Harvest Rush - Best Runs")
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'harvest play' to get on the board!")
		return nil
	}

	fmt.Printf("  %-4s  %-7s  %-5s  %-9s  %-7s  %-6s  %s\n", "Rank", "Harvest", "Level", "Result", "You-AI", "Time", "Date")
	fmt.Printf("  %-4s  %-7s  %-5s  %-9s  %-7s  %-6s  %s\n", "----", "-------", "-----", "------", "------", "----", "----")
	for i, r := range runs {
		result := "lost"
		if r.Outcome == storage.OutcomeWin {
			result = "WON"
		}
		fmt.Printf("  %-4d  %-7d  %-5d  %-9s  %-7s  %-6s  %s\n",
			i+1, r.Harvested, r.Level, result,
			fmt.Sprintf("%d-%d", r.Score, r.AIScore),
			fmt.Sprintf("%d:%02d", r.Duration/60, r.Duration%60),
			r.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.Stats()
	if err == nil {
		fmt.Println()
		fmt.Printf("Runs: %d  Wins: %d  Best: %d  Avg: %.1f  Furthest level: %d\n",
			stats.Runs, stats.Wins, stats.BestHarvest, stats.AvgHarvest, stats.FurthestLevel)
	}
	return nil
}
