package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/harvest/internal/core"
	"github.com/vovakirdan/harvest/internal/games/harvest"
)

// GameKeyMap defines the key bindings used while playing.
type GameKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Start  key.Binding
	Pause  key.Binding
	Reset  key.Binding
	Scores key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Scores, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Start, k.Pause, k.Reset},
		{k.Scores, k.Help, k.Quit},
	}
}

// DefaultGameKeyMap returns default key bindings.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "w"),
			key.WithHelp("up/w", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s"),
			key.WithHelp("down/s", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("left/a", "move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("right/d", "move right"),
		),
		Start: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "start"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "back to menu"),
		),
		Scores: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "scores"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	keys GameKeyMap
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: DefaultGameKeyMap()}
}

// Keys returns the bindings used by the mapper.
func (km *KeyMapper) Keys() GameKeyMap {
	return km.keys
}

// MapKey translates a key message to an action. Unbound keys map to ActionNone.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, km.keys.Quit):
		return core.ActionQuit
	case key.Matches(msg, km.keys.Up):
		return core.ActionUp
	case key.Matches(msg, km.keys.Down):
		return core.ActionDown
	case key.Matches(msg, km.keys.Left):
		return core.ActionLeft
	case key.Matches(msg, km.keys.Right):
		return core.ActionRight
	case key.Matches(msg, km.keys.Start):
		return core.ActionConfirm
	case key.Matches(msg, km.keys.Pause):
		return core.ActionPause
	case key.Matches(msg, km.keys.Reset):
		return core.ActionRestart
	}
	return core.ActionNone
}

// directionFor maps a movement action to a field direction.
func directionFor(a core.Action) (harvest.Direction, bool) {
	switch a {
	case core.ActionUp:
		return harvest.DirUp, true
	case core.ActionDown:
		return harvest.DirDown, true
	case core.ActionLeft:
		return harvest.DirLeft, true
	case core.ActionRight:
		return harvest.DirRight, true
	}
	return 0, false
}

// opposite returns the direction pointing the other way.
func opposite(d harvest.Direction) harvest.Direction {
	switch d {
	case harvest.DirUp:
		return harvest.DirDown
	case harvest.DirDown:
		return harvest.DirUp
	case harvest.DirLeft:
		return harvest.DirRight
	default:
		return harvest.DirLeft
	}
}

// DefaultHoldWindow is how long a direction stays held after its last key event.
// It must outlast the gap between terminal key repeats.
const DefaultHoldWindow = 200 * time.Millisecond

// HeldKeys tracks which directions are held.
// Terminals report presses and repeats but never releases, so a direction
// counts as held until its hold window passes without another event.
type HeldKeys struct {
	last   [4]time.Time
	window time.Duration
	now    func() time.Time
}

// NewHeldKeys creates a tracker with the default hold window.
func NewHeldKeys() *HeldKeys {
	return &HeldKeys{window: DefaultHoldWindow, now: time.Now}
}

// Press records a key event for d. The opposite direction is released.
func (h *HeldKeys) Press(d harvest.Direction) {
	if !validDirection(d) {
		return
	}
	h.last[d] = h.now()
	h.last[opposite(d)] = time.Time{}
}

// Held reports whether d is currently held. It implements harvest.Input.
func (h *HeldKeys) Held(d harvest.Direction) bool {
	if !validDirection(d) {
		return false
	}
	t := h.last[d]
	return !t.IsZero() && h.now().Sub(t) < h.window
}

// ReleaseAll forgets every held direction.
func (h *HeldKeys) ReleaseAll() {
	h.last = [4]time.Time{}
}

func validDirection(d harvest.Direction) bool {
	return d >= harvest.DirDown && d <= harvest.DirRight
}
