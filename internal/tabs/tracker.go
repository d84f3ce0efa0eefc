package tabs

import (
	"sync"
	"time"

	"github.com/tabkeep/tabkeepd/internal/domain"
)

// Tracker maintains one TabTimer per currently-open tab that has been
// observed by at least one lifecycle event. It is the single in-memory
// source the inactivity scanner reads from.
//
// Nothing here is persisted: a daemon restart resets the tracker, and
// tabs that survive the restart are invisible to the scanner until they
// are re-observed via a creation or activation event.
type Tracker struct {
	mu     sync.RWMutex
	timers map[domain.TabID]*domain.TabTimer
	now    func() time.Time
}

// NewTracker creates an empty tracker. now is injectable for tests;
// nil defaults to time.Now.
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		timers: make(map[domain.TabID]*domain.TabTimer),
		now:    now,
	}
}

// OnTabCreated records a freshly created tab. A second creation event
// for the same id simply overwrites the existing timer.
func (t *Tracker) OnTabCreated(id domain.TabID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.timers[id] = &domain.TabTimer{Created: now, LastActive: now}
}

// OnTabActivated marks a tab as just used. A tab with no timer (it
// predates the tracker) is discovered lazily here, with both fields set
// to now.
func (t *Tracker) OnTabActivated(id domain.TabID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if timer, ok := t.timers[id]; ok {
		timer.LastActive = now
		return
	}
	t.timers[id] = &domain.TabTimer{Created: now, LastActive: now}
}

// OnTabRemoved deletes the timer. Removing an unknown id is a no-op:
// tab ids are reused by the browser, so the delete must never fail.
func (t *Tracker) OnTabRemoved(id domain.TabID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.timers, id)
}

// OnTabUpdated refreshes LastActive when the tab navigated to a new URL.
// Updates without a URL change, or for untracked tabs, are ignored:
// tracking is never initialized from update events alone.
func (t *Tracker) OnTabUpdated(id domain.TabID, urlChanged bool) {
	if !urlChanged {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.timers[id]; ok {
		timer.LastActive = t.now()
	}
}

// Lookup returns a copy of the timer for id.
func (t *Tracker) Lookup(id domain.TabID) (domain.TabTimer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	timer, ok := t.timers[id]
	if !ok {
		return domain.TabTimer{}, false
	}
	return *timer, true
}

// Snapshot returns a copy of all timers.
func (t *Tracker) Snapshot() map[domain.TabID]domain.TabTimer {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[domain.TabID]domain.TabTimer, len(t.timers))
	for id, timer := range t.timers {
		out[id] = *timer
	}
	return out
}

// Count returns the number of tracked tabs.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.timers)
}

// Reset drops all timers, as a worker restart would.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.timers = make(map[domain.TabID]*domain.TabTimer)
}
