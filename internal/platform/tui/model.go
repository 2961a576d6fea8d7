package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/harvest/internal/config"
	"github.com/vovakirdan/harvest/internal/core"
	"github.com/vovakirdan/harvest/internal/games/harvest"
	"github.com/vovakirdan/harvest/internal/storage"
)

// Rows reserved above and below the field.
const (
	hudRows  = 1
	helpRows = 1
)

// Options configures a game Model.
type Options struct {
	Config       config.HarvestConfig
	Runtime      core.RuntimeConfig
	Store        *storage.Store  // Optional, runs are not recorded when nil
	Logger       *log.Logger     // Optional, discarded when nil
	LevelsSource string          // Optional file path or URL of a level table
	Player       string          // Shown in logs, e.g. the SSH user
	Context      context.Context // Bounds background loads, defaults to Background
}

// hudText collects the loop's HUD fields. It implements harvest.HUD.
type hudText map[harvest.HUDField]string

func (h hudText) SetText(field harvest.HUDField, text string) {
	h[field] = text
}

// Model is the Bubble Tea model for playing harvest.
type Model struct {
	loop     *harvest.Loop
	screen   *core.Screen
	surface  *harvest.ScreenSurface
	held     *HeldKeys
	hud      hudText
	mapper   *KeyMapper
	help     help.Model
	store    *storage.Store
	logger   *log.Logger
	config   core.RuntimeConfig
	levels   string
	ctx      context.Context
	fits     bool // Terminal is large enough for the field
	best     int  // Best harvest in the ledger
	scores   *ScoreboardModel
	runSaved bool // Whether the current finished run has been recorded
	quitting bool
}

// NewModel creates a new Bubble Tea model around a fresh harvest loop.
func NewModel(opts Options) (Model, error) {
	cfg := opts.Runtime
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Player != "" {
		logger = logger.With("player", opts.Player)
	}

	screen := core.NewScreen(max(cfg.ScreenW, 1), max(cfg.ScreenH-hudRows-helpRows, 1))
	surface := harvest.NewScreenSurface(screen, core.Rect{})
	held := NewHeldKeys()
	hud := hudText{}

	loop, err := harvest.NewLoop(harvest.LoopConfig{
		Config:  opts.Config,
		Seed:    cfg.Seed,
		Surface: surface,
		Input:   held,
		HUD:     hud,
		Logger:  logger,
	})
	if err != nil {
		return Model{}, err
	}

	h := help.New()
	h.Width = cfg.ScreenW

	m := Model{
		loop:    loop,
		screen:  screen,
		surface: surface,
		held:    held,
		hud:     hud,
		mapper:  NewKeyMapper(),
		help:    h,
		store:   opts.Store,
		logger:  logger,
		config:  cfg,
		levels:  opts.LevelsSource,
		ctx:     opts.Context,
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	m.layout()
	m.loadBest()

	return m, nil
}

// Init starts the level table load, if any, and the tick loop.
func (m Model) Init() tea.Cmd {
	if m.levels != "" {
		m.loop.LoadLevels(m.ctx, m.levels)
	}
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case scoreboardClosedMsg:
		m.scores = nil
		return m, nil

	case tea.KeyMsg:
		if m.scores != nil {
			return m.updateScores(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m = m.handleResize(msg)
		if m.scores != nil {
			return m.updateScores(msg)
		}
		return m, nil

	case TickMsg:
		return m.handleTick(msg)
	}

	return m, nil
}

// updateScores forwards a message to the open scoreboard.
func (m Model) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scores.Update(msg)
	if sb, ok := next.(ScoreboardModel); ok {
		m.scores = &sb
		if sb.IsQuitting() {
			m.quit()
		}
	}
	return m, cmd
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+s":
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, m.mapper.Keys().Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.mapper.Keys().Scores):
		m.openScores()
		return m, nil
	}

	action := m.mapper.MapKey(msg)
	if dir, ok := directionFor(action); ok {
		m.held.Press(dir)
		return m, nil
	}

	switch action {
	case core.ActionQuit:
		m.quit()
		return m, tea.Quit
	case core.ActionConfirm:
		if m.loop.Session().State() != harvest.StatePaused {
			m.runSaved = false
		}
		m.held.ReleaseAll()
		m.loop.Start()
	case core.ActionPause:
		m.loop.TogglePause()
		m.held.ReleaseAll()
	case core.ActionRestart:
		m.loop.Reset()
		m.runSaved = false
		m.held.ReleaseAll()
	}

	return m, nil
}

// openScores pauses play and shows the scoreboard over the field.
func (m *Model) openScores() {
	if m.loop.Session().State() == harvest.StatePlaying {
		m.loop.TogglePause()
	}
	m.held.ReleaseAll()
	sb := NewScoreboardModel(m.store, m.config.ScreenW, m.config.ScreenH)
	sb.embedded = true
	m.scores = &sb
}

// handleResize processes window resize events.
// The simulation runs in world units, so a resize only changes the layout.
func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.help.Width = msg.Width
	m.layout()
	return m
}

// layout sizes the screen buffer and places the field area and its border.
func (m *Model) layout() {
	w := max(m.config.ScreenW, 1)
	h := max(m.config.ScreenH-hudRows-helpRows, 1)
	m.screen.Resize(w, h)
	m.screen.Clear()

	area, ok := fitField(w-2, h-2)
	m.fits = ok
	if !ok {
		m.surface.SetArea(core.Rect{})
		return
	}
	area.X++
	area.Y++
	m.surface.SetArea(area)
	m.screen.DrawBox(core.NewRect(area.X-1, area.Y-1, area.W+2, area.H+2), core.ColorDarkGreen)
}

// handleTick runs one frame of the loop.
func (m Model) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	if m.scores == nil {
		m.loop.Frame(time.Time(msg))
		m.recordRun()
	}
	return m, tickCmd(m.config.TickRate)
}

// recordRun saves a finished run to the ledger, once.
func (m *Model) recordRun() {
	snap := m.loop.Session().Snapshot()
	if !snap.State.Terminal() || m.runSaved {
		return
	}
	m.runSaved = true
	if m.store == nil {
		return
	}

	outcome := storage.OutcomeGameOver
	if snap.State == harvest.StateWin {
		outcome = storage.OutcomeWin
	}
	_, err := m.store.SaveRun(storage.Run{
		Outcome:   outcome,
		Level:     snap.Level,
		Score:     snap.Score,
		AIScore:   snap.AIScore,
		Harvested: snap.Harvested,
		Duration:  int(snap.Played),
	})
	if err != nil {
		// Best-effort save, the game continues regardless
		m.logger.Warn("could not record run", "err", err)
		return
	}
	m.best = max(m.best, snap.Harvested)
}

// loadBest reads the best harvest from the ledger for the HUD.
func (m *Model) loadBest() {
	if m.store == nil {
		return
	}
	best, err := m.store.BestHarvest()
	if err != nil {
		m.logger.Warn("could not read best harvest", "err", err)
		return
	}
	m.best = best
}

// quit releases the loop. Safe to call more than once.
func (m *Model) quit() {
	m.quitting = true
	m.loop.Dispose()
}

// saveScreenshot saves the current field to a file.
func (m *Model) saveScreenshot() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".harvest", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("harvest_%s.txt", timestamp))

	content := m.hudLine() + "\n" + m.screen.String()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		m.logger.Warn("could not save screenshot", "err", err)
		return
	}
	m.logger.Info("screenshot saved", "path", path)
}

var (
	hudLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	hudValueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	hudRivalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	hudStatusStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// hudLine renders the heads-up display row.
func (m Model) hudLine() string {
	field := func(label, value string, style lipgloss.Style) string {
		return hudLabelStyle.Render(label+" ") + style.Render(value)
	}
	parts := []string{
		field("Level", m.hud[harvest.HUDLevel], hudValueStyle),
		field("Goal", m.hud[harvest.HUDGoal], hudValueStyle),
		field("You", m.hud[harvest.HUDScore], hudValueStyle),
		field("Rival", m.hud[harvest.HUDCompetitor], hudRivalStyle),
		field("Time", m.hud[harvest.HUDTime], hudValueStyle),
		field("Best", fmt.Sprintf("%d", m.best), hudValueStyle),
	}
	line := strings.Join(parts, "   ")
	if status := m.hud[harvest.HUDStatus]; status != "" {
		line += "   " + hudStatusStyle.Render(status)
	}
	return line
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.scores != nil {
		return m.scores.View()
	}
	if !m.fits {
		return centerText(fmt.Sprintf("Terminal too small (%dx%d)", m.config.ScreenW, m.config.ScreenH), m.config.ScreenW)
	}

	var b strings.Builder
	b.WriteString(m.hudLine())
	b.WriteString("\n")
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.mapper.Keys())))
	return b.String()
}

// Loop returns the driven harvest loop.
func (m Model) Loop() *harvest.Loop {
	return m.loop
}

// Run starts the Bubble Tea program for a local game.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	defer model.loop.Dispose()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
