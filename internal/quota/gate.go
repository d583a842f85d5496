// Package quota decides whether a swipe is allowed today.
//
// Each filter key has its own QuotaState. SwipesUsedToday only grows during a
// day and is compared against the free limit plus the granted bonus, so there
// is no draw-down order to get wrong. The "global" key holds a bonus pool
// shared by every filter; when a filter runs past its own allowance the next
// swipe moves one swipe from the global pool into that filter's bonus.
package quota

import (
	"errors"
	"fmt"
	"swipetriage/internal/models"
	"swipetriage/internal/providers"
	"swipetriage/internal/structures"
	"sync"
	"time"
)

const (
	GlobalKey         = "global"
	DefaultAdInterval = 5
	dayLayout         = "2006-01-02"
)

var ErrInvalidBonus = errors.New("bonus must be positive")

// Persister is the slice of the progress store the gate writes through.
type Persister interface {
	SaveQuota(states map[string]models.QuotaState) error
}

type GateInterface interface {
	// CanSwipe is a pure query and never fails.
	CanSwipe(filterKey string, ent models.Entitlement) bool
	RecordSwipe(filterKey string) error
	GrantBonus(key string, n int) error
	ResetDaily(filterKey string) error
	// Rollover starts a new day for every state stamped with an older day.
	Rollover() error
	ResetAll() error
	// Remaining returns -1 for unlimited entitlements.
	Remaining(filterKey string, ent models.Entitlement) int
	ShouldShowInterstitial(ent models.Entitlement) bool
	Restore(states map[string]models.QuotaState)
	States() map[string]models.QuotaState
}

type Gate struct {
	mu         sync.Mutex
	states     map[string]models.QuotaState
	limit      int
	adInterval int
	persister  Persister
	logger     providers.Logger
	now        func() time.Time
}

func NewGate(conf *structures.Config, persister Persister, logger providers.Logger) GateInterface {
	return NewGateWithClock(conf, persister, logger, time.Now)
}

func NewGateWithClock(conf *structures.Config, persister Persister, logger providers.Logger, now func() time.Time) *Gate {
	interval := conf.Quota.AdInterval
	if interval == 0 {
		interval = DefaultAdInterval
	}
	return &Gate{
		states:     make(map[string]models.QuotaState),
		limit:      conf.Quota.DailyFreeLimit,
		adInterval: interval,
		persister:  persister,
		logger:     logger,
		now:        now,
	}
}

func (g *Gate) today() string {
	return g.now().Format(dayLayout)
}

// rollover returns st as it looks on day: a state stamped with an older day
// starts from zero swipes and keeps only the bonus it did not consume.
func (g *Gate) rollover(st models.QuotaState, day string) models.QuotaState {
	if st.Day == day {
		return st
	}
	return models.QuotaState{Day: day, BonusSwipesRemaining: g.unconsumedBonus(st), RecordedSwipes: st.RecordedSwipes}
}

func (g *Gate) unconsumedBonus(st models.QuotaState) int {
	over := st.SwipesUsedToday - g.limit
	if over < 0 {
		over = 0
	}
	left := st.BonusSwipesRemaining - over
	if left < 0 {
		return 0
	}
	return left
}

func (g *Gate) current(key, day string) models.QuotaState {
	return g.rollover(g.states[key], day)
}

func (g *Gate) allowance(st, global models.QuotaState) int {
	return g.limit + st.BonusSwipesRemaining + global.BonusSwipesRemaining
}

func (g *Gate) CanSwipe(filterKey string, ent models.Entitlement) bool {
	if ent.Unlimited() {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	day := g.today()
	st := g.current(filterKey, day)
	return st.SwipesUsedToday < g.allowance(st, g.current(GlobalKey, day))
}

func (g *Gate) Remaining(filterKey string, ent models.Entitlement) int {
	if ent.Unlimited() {
		return -1
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	day := g.today()
	st := g.current(filterKey, day)
	left := g.allowance(st, g.current(GlobalKey, day)) - st.SwipesUsedToday
	if left < 0 {
		return 0
	}
	return left
}

func (g *Gate) RecordSwipe(filterKey string) error {
	if filterKey == GlobalKey {
		return fmt.Errorf("cannot record a swipe against %q", GlobalKey)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	day := g.today()
	next := g.copyStates()
	st := g.current(filterKey, day)
	global := g.current(GlobalKey, day)
	st.SwipesUsedToday++
	if st.SwipesUsedToday > g.limit+st.BonusSwipesRemaining && global.BonusSwipesRemaining > 0 {
		global.BonusSwipesRemaining--
		st.BonusSwipesRemaining++
	}
	global.RecordedSwipes++
	next[filterKey] = st
	next[GlobalKey] = global

	return g.commit(next)
}

func (g *Gate) GrantBonus(key string, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidBonus, n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.copyStates()
	st := g.current(key, g.today())
	st.BonusSwipesRemaining += n
	next[key] = st
	if err := g.commit(next); err != nil {
		return err
	}
	g.logger.Infof(providers.TypeQuota, "Granted %d bonus swipes to %s", n, key)
	return nil
}

func (g *Gate) ResetDaily(filterKey string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.copyStates()
	st := g.states[filterKey]
	next[filterKey] = models.QuotaState{Day: g.today(), BonusSwipesRemaining: g.unconsumedBonus(st), RecordedSwipes: st.RecordedSwipes}
	return g.commit(next)
}

func (g *Gate) Rollover() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	day := g.today()
	next := make(map[string]models.QuotaState, len(g.states))
	changed := 0
	for key, st := range g.states {
		rolled := g.rollover(st, day)
		if rolled != st {
			changed++
		}
		next[key] = rolled
	}
	if changed == 0 {
		return nil
	}
	if err := g.commit(next); err != nil {
		return err
	}
	g.logger.Infof(providers.TypeQuota, "Rolled %d quota states over to %s", changed, day)
	return nil
}

func (g *Gate) ResetAll() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.commit(make(map[string]models.QuotaState))
}

func (g *Gate) ShouldShowInterstitial(ent models.Entitlement) bool {
	if ent.Unlimited() {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.states[GlobalKey].RecordedSwipes
	return n > 0 && n%g.adInterval == 0
}

// Restore replaces the in-memory states with persisted ones without writing.
func (g *Gate) Restore(states map[string]models.QuotaState) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.states = make(map[string]models.QuotaState, len(states))
	for k, v := range states {
		g.states[k] = v
	}
}

func (g *Gate) States() map[string]models.QuotaState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.copyStates()
}

func (g *Gate) copyStates() map[string]models.QuotaState {
	out := make(map[string]models.QuotaState, len(g.states)+1)
	for k, v := range g.states {
		out[k] = v
	}
	return out
}

// commit persists next and only then makes it the live state.
func (g *Gate) commit(next map[string]models.QuotaState) error {
	if err := g.persister.SaveQuota(next); err != nil {
		g.logger.Errorf(providers.TypeQuota, "Quota state not saved: %s", err)
		return err
	}
	g.states = next
	return nil
}
