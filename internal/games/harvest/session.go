package harvest

import (
	"errors"
	"math"
	"math/rand"
	"slices"

	"github.com/vovakirdan/harvest/internal/config"
)

// MaxStep caps the simulated time of a single Update, in seconds.
const MaxStep = 0.033

// ErrLevelsLocked is returned when a level table is offered after play has started.
var ErrLevelsLocked = errors.New("harvest: level table is locked once play has started")

// State is the session state.
type State string

const (
	StateMenu     State = "menu"
	StatePlaying  State = "playing"
	StatePaused   State = "paused"
	StateGameOver State = "game_over"
	StateWin      State = "win"
)

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateGameOver || s == StateWin
}

// EventKind identifies something notable that happened during an Update.
type EventKind string

const (
	EventLevelAdvanced EventKind = "level_advanced"
	EventPowerUp       EventKind = "power_up"
	EventBoostExpired  EventKind = "boost_expired"
	EventGameOver      EventKind = "game_over"
	EventWin           EventKind = "win"
)

// Event is emitted by Update. Level is the level current after the event.
type Event struct {
	Kind  EventKind
	Level int
}

// StepResult describes what a single Update did.
type StepResult struct {
	Events       []Event
	PlayerPicked int // Crops collected by the player
	AIPicked     int // Crops collected by the competitor
	Spawned      int // Crops spawned
}

// Has reports whether an event of the given kind was emitted.
func (r StepResult) Has(kind EventKind) bool {
	for _, e := range r.Events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Session owns all simulation state for one player.
type Session struct {
	cfg       config.HarvestConfig
	levels    []config.LevelConfig
	rng       *rand.Rand
	schedule  *config.SpawnSchedule
	cropTypes cropTable

	state     State
	level     int // 1-indexed
	elapsed   float64
	remaining float64
	played    float64 // Simulated seconds across all levels of the run
	score     int
	harvested int // Player points across all levels of the run
	tick      uint64
	started   bool

	player     Farmer
	competitor Competitor
	crops      cropArena
	powerUps   []PowerUp
	obstacles  []Obstacle
	spawnAccum float64
	boost      boost
}

// NewSession creates a session in the menu state with level 1 laid out.
// Sections of cfg the simulation cannot run with fall back to the built-in
// defaults, and a competitor as fast as the player is slowed below it.
// Callers that must reject such configs call cfg.Validate first, as NewLoop does.
func NewSession(cfg config.HarvestConfig, seed int64) *Session {
	cfg = cfg.WithDefaults()

	s := &Session{
		cfg:       cfg,
		levels:    slices.Clone(cfg.Levels),
		rng:       rand.New(rand.NewSource(seed)),
		schedule:  config.NewSpawnSchedule(cfg.Spawn),
		cropTypes: newCropTable(cfg.Crops),
		boost:     boost{cfg: cfg.Boost},
		state:     StateMenu,
	}
	s.loadLevel(1)
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Level returns the current level, starting at 1.
func (s *Session) Level() int {
	return s.level
}

// Started reports whether Start has ever begun a run.
func (s *Session) Started() bool {
	return s.started
}

// Levels returns a copy of the active level table.
func (s *Session) Levels() []config.LevelConfig {
	return slices.Clone(s.levels)
}

// SetLevels replaces the level table. It is only allowed before the first Start.
func (s *Session) SetLevels(levels []config.LevelConfig) error {
	if s.started {
		return ErrLevelsLocked
	}
	if err := config.ValidateLevels(levels); err != nil {
		return err
	}
	s.levels = slices.Clone(levels)
	s.loadLevel(1)
	return nil
}

// Start begins a fresh run at level 1, or resumes a paused one.
func (s *Session) Start() {
	switch s.state {
	case StatePlaying:
		return
	case StatePaused:
		s.state = StatePlaying
		return
	}

	s.started = true
	s.harvested = 0
	s.played = 0
	s.loadLevel(1)
	s.state = StatePlaying
}

// TogglePause switches between playing and paused. Other states are unaffected.
func (s *Session) TogglePause() {
	switch s.state {
	case StatePlaying:
		s.state = StatePaused
	case StatePaused:
		s.state = StatePlaying
	}
}

// Reset returns to the menu with level 1 laid out.
func (s *Session) Reset() {
	s.harvested = 0
	s.played = 0
	s.loadLevel(1)
	s.state = StateMenu
}

// levelConfig returns the configuration of the current level.
func (s *Session) levelConfig() config.LevelConfig {
	return s.levels[s.level-1]
}

// loadLevel resets per-level entities, scores and timers for level n.
func (s *Session) loadLevel(n int) {
	s.level = n
	lvl := s.levelConfig()

	s.elapsed = 0
	s.remaining = lvl.Time
	s.score = 0
	s.spawnAccum = 0

	s.player = newFarmer(s.cfg.Player)
	s.competitor = newCompetitor(s.cfg.Competitor)
	s.boost.active = false
	s.boost.remaining = 0

	s.crops.clear()
	s.powerUps = s.powerUps[:0]
	s.obstacles = obstacleLayout(lvl.ExtraScarecrows)
}

// clampStep bounds dt to [0, MaxStep].
func clampStep(dt float64) float64 {
	if dt < 0 || math.IsNaN(dt) {
		return 0
	}
	return math.Min(dt, MaxStep)
}

// Update advances the simulation by dt seconds. Outside the playing state it does nothing.
//
// Order within a tick: clock, player, competitor, spawning, collisions (player crops,
// competitor crops, player power-ups), removal of collected items, boost countdown,
// crop sway, then the win/lose/advance evaluation.
func (s *Session) Update(dt float64, in Input) StepResult {
	var res StepResult
	if s.state != StatePlaying {
		return res
	}
	if in == nil {
		in = noInput{}
	}

	dt = clampStep(dt)
	lvl := s.levelConfig()
	s.tick++
	s.elapsed += dt
	s.played += dt
	s.remaining = math.Max(s.remaining-dt, 0)

	s.player.steer(in)
	s.player.move(dt, s.obstacles)

	s.competitor.think(dt, &s.crops, s.rng)
	s.competitor.move(dt, s.obstacles)

	res.Spawned = s.spawn(dt, lvl)
	s.collide(&res)

	s.crops.sweep()
	s.powerUps = slices.DeleteFunc(s.powerUps, func(p PowerUp) bool { return !p.Alive })

	if s.boost.tick(dt, &s.player) {
		res.Events = append(res.Events, Event{Kind: EventBoostExpired, Level: s.level})
	}

	s.crops.each(func(_ CropHandle, c *Crop) {
		c.Sway += dt * swayRate
	})

	s.evaluate(&res, lvl)
	return res
}

// collide resolves pickups. The player collects before the competitor, so a
// crop both overlap goes to the player.
func (s *Session) collide(res *StepResult) {
	pb := s.player.Bounds()

	s.crops.each(func(_ CropHandle, c *Crop) {
		if pb.Overlaps(c.Bounds()) {
			c.Alive = false
			s.score += c.Points
			s.harvested += c.Points
			res.PlayerPicked++
		}
	})

	res.AIPicked = s.competitor.harvest(&s.crops)

	for i := range s.powerUps {
		p := &s.powerUps[i]
		if !p.Alive || !pb.Overlaps(p.Bounds()) {
			continue
		}
		p.Alive = false
		s.boost.apply(&s.player)
		res.Events = append(res.Events, Event{Kind: EventPowerUp, Level: s.level})
	}
}

// evaluate applies end-of-tick transitions. The competitor reaching the goal is
// checked first and wins ties.
func (s *Session) evaluate(res *StepResult, lvl config.LevelConfig) {
	switch {
	case s.competitor.Score >= lvl.Goal:
		s.state = StateGameOver
		res.Events = append(res.Events, Event{Kind: EventGameOver, Level: s.level})
	case s.score >= lvl.Goal:
		if s.level >= len(s.levels) {
			s.state = StateWin
			res.Events = append(res.Events, Event{Kind: EventWin, Level: s.level})
			return
		}
		s.loadLevel(s.level + 1)
		res.Events = append(res.Events, Event{Kind: EventLevelAdvanced, Level: s.level})
	case s.remaining <= 0:
		s.state = StateGameOver
		res.Events = append(res.Events, Event{Kind: EventGameOver, Level: s.level})
	}
}

// Snapshot captures session state for rendering, tests and the results ledger.
type Snapshot struct {
	Tick           uint64
	State          State
	Level          int
	Levels         int
	Goal           int
	Score          int
	AIScore        int
	Harvested      int
	Remaining      float64
	Elapsed        float64
	Played         float64
	BoostActive    bool
	BoostRemaining float64
	PlayerSpeed    float64
	PlayerX        float64
	PlayerY        float64
	AIX            float64
	AIY            float64
	Crops          int
	PowerUps       int
	Obstacles      int
}

// Snapshot returns the current session snapshot.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Tick:           s.tick,
		State:          s.state,
		Level:          s.level,
		Levels:         len(s.levels),
		Goal:           s.levelConfig().Goal,
		Score:          s.score,
		AIScore:        s.competitor.Score,
		Harvested:      s.harvested,
		Remaining:      s.remaining,
		Elapsed:        s.elapsed,
		Played:         s.played,
		BoostActive:    s.boost.active,
		BoostRemaining: s.boost.remaining,
		PlayerSpeed:    s.player.Speed,
		PlayerX:        s.player.X,
		PlayerY:        s.player.Y,
		AIX:            s.competitor.X,
		AIY:            s.competitor.Y,
		Crops:          s.crops.len(),
		PowerUps:       len(s.powerUps),
		Obstacles:      len(s.obstacles),
	}
}
