// Package wave implements the wave spawning controller.
//
// A Controller spends a token budget spawning enemies round-robin across registered
// spawner points, caps how many are alive at once, and schedules the next wave once
// enough of the current one has been defeated and the remaining tokens run low.
//
// The controller is not safe for concurrent use. All calls, including timer callbacks,
// are expected on the game loop goroutine.
package wave

import (
	"errors"
	"math"
	"reflect"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/asteroid-waves/internal/timer"
)

// ErrSpawnUnavailable is returned by a Spawner that cannot produce an enemy right now.
var ErrSpawnUnavailable = errors.New("wave: spawner unavailable")

// Enemy is a handle to a live enemy. Handles are compared by identity, so
// implementations should be pointer types. Handles whose dynamic type is not
// comparable are rejected.
type Enemy any

// isComparable reports whether v can be used with == and as a map key.
func isComparable(v any) bool {
	return v != nil && reflect.TypeOf(v).Comparable()
}

// Spawner is the capability a spawner point must expose to be registered.
type Spawner interface {
	// SpawnEnemy materialises one enemy costing at most budget tokens and returns it
	// together with the tokens actually spent.
	SpawnEnemy(budget int) (Enemy, int, error)
}

// Timers schedules the delayed wave advance.
type Timers interface {
	ScheduleOnce(delay time.Duration, fn func()) timer.Handle
	IsPending(h timer.Handle) bool
	Cancel(h timer.Handle) bool
}

// Status is an immutable view of the controller for display.
type Status struct {
	Wave             int  `json:"wave"`
	TokenBudget      int  `json:"tokenBudget"`
	AvailableTokens  int  `json:"availableTokens"`
	ActiveEnemies    int  `json:"activeEnemies"`
	MaxActiveEnemies int  `json:"maxActiveEnemies"`
	SpawnedThisWave  int  `json:"spawnedThisWave"`
	KilledThisWave   int  `json:"killedThisWave"`
	TotalSpawned     int  `json:"totalSpawned"`
	TotalKilled      int  `json:"totalKilled"`
	SpawnPoints      int  `json:"spawnPoints"`
	AdvancePending   bool `json:"advancePending"`
	Stalled          bool `json:"stalled"`
}

// Controller is the wave state machine.
type Controller struct {
	timers Timers
	logger *log.Logger

	settings Settings

	waveNumber      int
	tokenBudget     int // Allotment added to availableTokens at each wave start
	availableTokens int

	spawners []Spawner
	active   map[Enemy]struct{}

	spawnedThisWave int
	killedThisWave  int
	totalSpawned    int
	totalKilled     int

	advance    timer.Handle
	lastFailed bool // Last spawn loop stopped on a spawner failure
}

// NewController creates a controller that schedules wave advances on timers.
// A nil logger uses the default logger.
func NewController(timers Timers, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		timers:   timers,
		logger:   logger.WithPrefix("wave"),
		settings: DefaultSettings(),
		active:   make(map[Enemy]struct{}),
	}
}

// Start configures the controller and begins the first wave.
// Calling Start again fully re-initialises the session: counters and live enemies are
// cleared and a pending advance is cancelled. Registered spawner points are kept.
// Returns the result of the first wave's spawn loop.
func (c *Controller) Start(settings Settings) bool {
	c.settings = settings.Normalize()

	if c.advance != 0 {
		c.timers.Cancel(c.advance)
		c.advance = 0
	}

	c.waveNumber = 0
	c.tokenBudget = c.settings.StartingTokens
	c.availableTokens = 0
	c.spawnedThisWave = 0
	c.killedThisWave = 0
	c.totalSpawned = 0
	c.totalKilled = 0
	c.lastFailed = false
	clear(c.active)

	c.logger.Info("session started",
		"tokens", c.settings.StartingTokens,
		"growth", c.settings.GrowthFactor,
		"threshold", c.settings.KillThreshold,
		"maxActive", c.settings.MaxActiveEnemies)

	return c.BeginWave()
}

// BeginWave starts a new wave: per-wave counters reset, the wave's allotment is added on
// top of any unspent tokens, and spawning begins.
func (c *Controller) BeginWave() bool {
	c.spawnedThisWave = 0
	c.killedThisWave = 0
	c.availableTokens += c.tokenBudget
	c.waveNumber++

	c.logger.Info("wave started", "wave", c.waveNumber, "tokens", c.availableTokens)

	return c.SpawnEnemies()
}

// SpawnEnemies spends available tokens until they run out, the live cap is reached, or a
// spawner fails. Returns false if the loop stopped on a failure.
func (c *Controller) SpawnEnemies() bool {
	c.lastFailed = false

	for c.availableTokens > 0 &&
		len(c.active) < c.settings.MaxActiveEnemies &&
		len(c.spawners) > 0 {

		spawner := c.spawners[c.totalSpawned%len(c.spawners)]

		enemy, cost, err := spawner.SpawnEnemy(c.availableTokens)
		if err != nil {
			c.logger.Warn("spawner failed, spawning halted",
				"wave", c.waveNumber, "index", c.totalSpawned%len(c.spawners), "err", err)
			c.lastFailed = true
			return false
		}
		if !c.RegisterActiveEnemy(enemy) {
			// Without a new live enemy the cap can never bind, so stop rather than spin
			c.logger.Warn("spawner returned an unregistrable enemy, spawning halted",
				"wave", c.waveNumber, "index", c.totalSpawned%len(c.spawners))
			c.lastFailed = true
			return false
		}

		if cost < 0 {
			cost = 0
		}
		if cost > c.availableTokens {
			c.logger.Debug("spawner overspent budget", "cost", cost, "available", c.availableTokens)
			cost = c.availableTokens
		}
		c.availableTokens -= cost
		c.spawnedThisWave++
		c.totalSpawned++
	}

	return true
}

// IncreaseTokenBudget grows the per-wave allotment by the growth factor, rounding down.
func (c *Controller) IncreaseTokenBudget() {
	c.tokenBudget = int(math.Floor(float64(c.tokenBudget) * c.settings.GrowthFactor))
}

// AdvanceToNextWave begins the next wave and then grows the budget for the one after.
func (c *Controller) AdvanceToNextWave() {
	c.advance = 0
	c.BeginWave()
	c.IncreaseTokenBudget()
}

// RegisterSpawnerPoint adds entity to the spawner rotation. It fails without mutation if
// entity does not implement Spawner, is not comparable, or is already registered.
func (c *Controller) RegisterSpawnerPoint(entity any) bool {
	if !isComparable(entity) {
		return false
	}
	spawner, ok := entity.(Spawner)
	if !ok {
		return false
	}
	for _, s := range c.spawners {
		if s == spawner {
			return false
		}
	}
	c.spawners = append(c.spawners, spawner)
	return true
}

// RegisterActiveEnemy tracks enemy as alive. Fails on nil, non-comparable or duplicate handles.
func (c *Controller) RegisterActiveEnemy(enemy Enemy) bool {
	if !isComparable(enemy) {
		return false
	}
	if _, ok := c.active[enemy]; ok {
		return false
	}
	c.active[enemy] = struct{}{}
	return true
}

// ReportEnemyDefeated removes enemy from the live set and decides what happens next:
// schedule the next wave if the clear condition holds, otherwise top the field back up.
// Returns false, with no side effects, if enemy was not live.
func (c *Controller) ReportEnemyDefeated(enemy Enemy) bool {
	if !isComparable(enemy) {
		return false
	}
	if _, ok := c.active[enemy]; !ok {
		return false
	}
	delete(c.active, enemy)
	c.killedThisWave++
	c.totalKilled++

	threshold := float64(c.spawnedThisWave) * c.settings.KillThreshold
	if float64(c.killedThisWave) >= threshold &&
		c.availableTokens < c.settings.LowTokenThreshold &&
		!c.AdvancePending() {
		c.advance = c.timers.ScheduleOnce(c.settings.AdvanceDelay, c.AdvanceToNextWave)
		c.logger.Info("wave cleared",
			"wave", c.waveNumber,
			"killed", c.killedThisWave,
			"spawned", c.spawnedThisWave,
			"delay", c.settings.AdvanceDelay)
	} else if c.availableTokens > 0 {
		c.SpawnEnemies()
	}

	return true
}

// AdvancePending reports whether a wave advance is scheduled.
func (c *Controller) AdvancePending() bool {
	return c.advance != 0 && c.timers.IsPending(c.advance)
}

// Stalled reports whether the current wave can no longer progress by itself: nothing is
// alive to be defeated, no advance is scheduled, and spawning cannot proceed.
func (c *Controller) Stalled() bool {
	if c.waveNumber == 0 || len(c.active) > 0 || c.AdvancePending() {
		return false
	}
	return c.lastFailed ||
		len(c.spawners) == 0 ||
		c.availableTokens <= 0 ||
		c.settings.MaxActiveEnemies <= 0
}

// WaveNumber returns the current wave, or 0 before Start.
func (c *Controller) WaveNumber() int {
	return c.waveNumber
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	return Status{
		Wave:             c.waveNumber,
		TokenBudget:      c.tokenBudget,
		AvailableTokens:  c.availableTokens,
		ActiveEnemies:    len(c.active),
		MaxActiveEnemies: c.settings.MaxActiveEnemies,
		SpawnedThisWave:  c.spawnedThisWave,
		KilledThisWave:   c.killedThisWave,
		TotalSpawned:     c.totalSpawned,
		TotalKilled:      c.totalKilled,
		SpawnPoints:      len(c.spawners),
		AdvancePending:   c.AdvancePending(),
		Stalled:          c.Stalled(),
	}
}
