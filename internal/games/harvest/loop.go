package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/harvest/internal/config"
)

// ErrNoSurface is returned by NewLoop when no rendering surface is supplied.
var ErrNoSurface = errors.New("harvest: rendering surface is required")

// HUDField names one text field of the heads-up display.
type HUDField int

const (
	HUDScore HUDField = iota
	HUDCompetitor
	HUDTime
	HUDGoal
	HUDLevel
	HUDStatus
)

// HUD receives text updates for the heads-up display.
type HUD interface {
	SetText(field HUDField, text string)
}

// LoopConfig configures a Loop.
type LoopConfig struct {
	Config  config.HarvestConfig // Required, must pass Validate
	Seed    int64
	Surface Surface     // Required
	Input   Input       // Optional, nothing held when nil
	HUD     HUD         // Optional, skipped when nil
	Logger  *log.Logger // Optional, discarded when nil
}

// Loop drives a Session once per frame: it steps the simulation, renders it,
// updates the HUD and applies level tables that arrive from a background load.
// A Loop owns its input, HUD and loader subscriptions and releases them in Dispose.
type Loop struct {
	session *Session
	surface Surface
	input   Input
	hud     HUD
	logger  *log.Logger

	last     time.Time
	pending  <-chan config.LevelsResult
	cancel   context.CancelFunc
	disposed bool
}

// NewLoop creates a loop around a fresh session in the menu state.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Surface == nil {
		logger.Error("cannot create harvest loop", "err", ErrNoSurface)
		return nil, ErrNoSurface
	}
	if err := cfg.Config.Validate(); err != nil {
		logger.Error("invalid harvest config", "err", err)
		return nil, fmt.Errorf("harvest: %w", err)
	}

	input := cfg.Input
	if input == nil {
		input = noInput{}
	}

	return &Loop{
		session: NewSession(cfg.Config, cfg.Seed),
		surface: cfg.Surface,
		input:   input,
		hud:     cfg.HUD,
		logger:  logger,
	}, nil
}

// Session returns the driven session.
func (l *Loop) Session() *Session {
	return l.session
}

// LoadLevels starts loading a level table from source in the background.
// The result is applied by a later Frame if it arrives before the first Start.
// A previous load still in flight is cancelled.
func (l *Loop) LoadLevels(ctx context.Context, source string) {
	if l.disposed {
		return
	}
	if l.cancel != nil {
		l.cancel()
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.pending = config.LoadLevelsAsync(ctx, source)
	l.logger.Debug("loading level table", "source", source)
}

// OfferLevels applies a level load result. It reports whether the table was adopted.
// Failures and results that arrive after play has started are logged and dropped.
func (l *Loop) OfferLevels(res config.LevelsResult) bool {
	if res.Err != nil {
		l.logger.Warn("level table load failed, keeping current levels", "source", res.Source, "err", res.Err)
		return false
	}
	if err := l.session.SetLevels(res.Levels); err != nil {
		if errors.Is(err, ErrLevelsLocked) {
			l.logger.Info("level table arrived after start, discarded", "source", res.Source)
		} else {
			l.logger.Warn("level table rejected", "source", res.Source, "err", err)
		}
		return false
	}
	l.logger.Info("level table loaded", "source", res.Source, "levels", len(res.Levels))
	return true
}

// Start starts a new run, or resumes a paused one.
func (l *Loop) Start() {
	prev := l.session.State()
	l.session.Start()
	if prev != StatePaused && prev != StatePlaying {
		l.logger.Info("run started", "levels", len(l.session.levels))
	}
	l.last = time.Time{}
}

// TogglePause pauses or resumes play.
func (l *Loop) TogglePause() {
	l.session.TogglePause()
	l.last = time.Time{}
}

// Reset returns the session to the menu.
func (l *Loop) Reset() {
	l.session.Reset()
	l.last = time.Time{}
}

// Frame runs one frame at wall-clock time now. The first frame after creation,
// Start, TogglePause or Reset simulates zero time.
func (l *Loop) Frame(now time.Time) StepResult {
	dt := 0.0
	if !l.last.IsZero() {
		dt = now.Sub(l.last).Seconds()
	}
	l.last = now
	return l.Step(dt)
}

// Step runs one frame with an explicit delta in seconds. After Dispose it does nothing.
func (l *Loop) Step(dt float64) StepResult {
	if l.disposed {
		return StepResult{}
	}

	l.pollLevels()

	res := l.session.Update(dt, l.input)
	l.logEvents(res)

	l.surface.Clear()
	l.session.Draw(l.surface)
	l.syncHUD()
	return res
}

// pollLevels applies a finished background load without blocking.
func (l *Loop) pollLevels() {
	if l.pending == nil {
		return
	}
	select {
	case res, ok := <-l.pending:
		l.pending = nil
		if ok {
			l.OfferLevels(res)
		}
	default:
	}
}

func (l *Loop) logEvents(res StepResult) {
	for _, e := range res.Events {
		switch e.Kind {
		case EventLevelAdvanced:
			l.logger.Info("level advanced", "level", e.Level)
		case EventPowerUp:
			l.logger.Debug("speed boost picked up", "speed", l.session.player.Speed)
		case EventBoostExpired:
			l.logger.Debug("speed boost expired", "speed", l.session.player.Speed)
		case EventGameOver, EventWin:
			snap := l.session.Snapshot()
			l.logger.Info("run finished",
				"outcome", e.Kind,
				"level", snap.Level,
				"score", snap.Score,
				"ai_score", snap.AIScore,
				"harvested", snap.Harvested,
			)
		}
	}
}

// syncHUD pushes the current values to the HUD, if there is one.
func (l *Loop) syncHUD() {
	if l.hud == nil {
		return
	}
	snap := l.session.Snapshot()
	l.hud.SetText(HUDScore, fmt.Sprintf("%d", snap.Score))
	l.hud.SetText(HUDCompetitor, fmt.Sprintf("%d", snap.AIScore))
	l.hud.SetText(HUDTime, fmt.Sprintf("%.1f", snap.Remaining))
	l.hud.SetText(HUDGoal, fmt.Sprintf("%d", snap.Goal))
	l.hud.SetText(HUDLevel, fmt.Sprintf("%d/%d", snap.Level, snap.Levels))
	l.hud.SetText(HUDStatus, statusText(snap))
}

// statusText returns the one-line status for a snapshot.
func statusText(snap Snapshot) string {
	switch snap.State {
	case StateMenu:
		return "Press Enter to start"
	case StatePaused:
		return "Paused"
	case StateGameOver:
		return "Game over"
	case StateWin:
		return "You win!"
	}
	if snap.BoostActive {
		return fmt.Sprintf("Speed boost %.1fs", snap.BoostRemaining)
	}
	return ""
}

// Dispose cancels any background load and releases the input and HUD.
// It is safe to call more than once.
func (l *Loop) Dispose() {
	if l.disposed {
		return
	}
	l.disposed = true
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.pending = nil
	l.input = noInput{}
	l.hud = nil
	l.logger.Debug("harvest loop disposed")
}

// Disposed reports whether Dispose has been called.
func (l *Loop) Disposed() bool {
	return l.disposed
}
