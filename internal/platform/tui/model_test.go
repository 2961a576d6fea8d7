package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/harvest/internal/config"
	"github.com/vovakirdan/harvest/internal/core"
	"github.com/vovakirdan/harvest/internal/games/harvest"
	"github.com/vovakirdan/harvest/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("storage.Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestModel(t *testing.T, cfg config.HarvestConfig, store *storage.Store) Model {
	t.Helper()
	m, err := NewModel(Options{
		Config:  cfg,
		Runtime: core.RuntimeConfig{ScreenW: 100, ScreenH: 34, TickRate: 60, Seed: 7},
		Store:   store,
	})
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	return m
}

// send applies a message and returns the updated model.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	updated, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return updated
}

func TestModelStartAndPause(t *testing.T) {
	m := newTestModel(t, config.DefaultHarvestConfig(), nil)
	if got := m.Loop().Session().State(); got != harvest.StateMenu {
		t.Fatalf("expected menu, got %s", got)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Loop().Session().State(); got != harvest.StatePlaying {
		t.Fatalf("expected playing after enter, got %s", got)
	}

	m = send(t, m, runeKey('p'))
	if got := m.Loop().Session().State(); got != harvest.StatePaused {
		t.Errorf("expected paused, got %s", got)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Loop().Session().State(); got != harvest.StatePlaying {
		t.Errorf("enter should resume, got %s", got)
	}

	m = send(t, m, runeKey('r'))
	if got := m.Loop().Session().State(); got != harvest.StateMenu {
		t.Errorf("reset should return to menu, got %s", got)
	}
}

func TestModelTickMovesPlayer(t *testing.T) {
	m := newTestModel(t, config.DefaultHarvestConfig(), nil)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	t0 := time.Now()
	m = send(t, m, TickMsg(t0))
	startX := m.Loop().Session().Snapshot().PlayerX

	m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = send(t, m, TickMsg(t0.Add(20*time.Millisecond)))

	if x := m.Loop().Session().Snapshot().PlayerX; x >= startX {
		t.Errorf("expected player to move left from %.1f, got %.1f", startX, x)
	}
}

func TestModelRecordsFinishedRunOnce(t *testing.T) {
	store := openTestStore(t)
	cfg := config.DefaultHarvestConfig()
	cfg.Levels = []config.LevelConfig{{Goal: 50, Time: 0.05, SpawnBase: 5}}

	m := newTestModel(t, cfg, store)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	t0 := time.Now()
	for i := 0; i < 6; i++ {
		m = send(t, m, TickMsg(t0.Add(time.Duration(i)*40*time.Millisecond)))
	}

	if got := m.Loop().Session().State(); got != harvest.StateGameOver {
		t.Fatalf("expected game over, got %s", got)
	}

	runs, err := store.TopRuns(10)
	if err != nil {
		t.Fatalf("TopRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected exactly 1 recorded run, got %d", len(runs))
	}
	if runs[0].Outcome != storage.OutcomeGameOver || runs[0].Level != 1 {
		t.Errorf("unexpected run %+v", runs[0])
	}
	if !strings.Contains(m.View(), "Game over") {
		t.Error("HUD should show the game over status")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t, config.DefaultHarvestConfig(), nil)
	m = send(t, m, TickMsg(time.Now()))

	view := m.View()
	for _, want := range []string{"Level", "1/3", "Goal", "Press Enter to start", "┌", "█", "▓"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelTooSmall(t *testing.T) {
	m := newTestModel(t, config.DefaultHarvestConfig(), nil)
	m = send(t, m, tea.WindowSizeMsg{Width: 20, Height: 8})

	if !strings.Contains(m.View(), "Terminal too small") {
		t.Error("expected too small message")
	}

	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if strings.Contains(m.View(), "Terminal too small") {
		t.Error("field should be shown again after growing")
	}
}

func TestModelScoreboardOverlay(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SaveRun(storage.Run{Outcome: storage.OutcomeWin, Level: 3, Score: 25, Harvested: 60, Duration: 150}); err != nil {
		t.Fatal(err)
	}

	m := newTestModel(t, config.DefaultHarvestConfig(), store)
	if m.best != 60 {
		t.Errorf("expected best harvest 60 from ledger, got %d", m.best)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.scores == nil {
		t.Fatal("tab should open the scoreboard")
	}
	if got := m.Loop().Session().State(); got != harvest.StatePaused {
		t.Errorf("opening scores should pause, got %s", got)
	}
	if !strings.Contains(m.View(), "BEST RUNS") {
		t.Error("scoreboard view expected")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("back should emit a close command")
	}
	m = send(t, m, cmd())
	if m.scores != nil {
		t.Error("scoreboard should be closed")
	}
}

func TestModelQuitDisposesLoop(t *testing.T) {
	m := newTestModel(t, config.DefaultHarvestConfig(), nil)

	next, cmd := m.Update(runeKey('q'))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if !m.Loop().Disposed() {
		t.Error("quit should dispose the loop")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
}
