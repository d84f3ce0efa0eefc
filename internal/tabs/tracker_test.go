package tabs

import (
	"sync"
	"testing"
	"time"

	"github.com/tabkeep/tabkeepd/internal/domain"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	mu  sync.Mutex
	t   time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestTrackerCreateActivateRemove(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock.Now)

	tr.OnTabCreated("tab-1")
	timer, ok := tr.Lookup("tab-1")
	if !ok {
		t.Fatal("tab-1 should be tracked after creation")
	}
	if !timer.Created.Equal(clock.Now()) || !timer.LastActive.Equal(clock.Now()) {
		t.Errorf("new timer = %+v, want both fields at %v", timer, clock.Now())
	}

	clock.Advance(10 * time.Minute)
	tr.OnTabActivated("tab-1")
	timer, _ = tr.Lookup("tab-1")
	if !timer.LastActive.Equal(clock.Now()) {
		t.Errorf("LastActive = %v, want %v after activation", timer.LastActive, clock.Now())
	}
	if timer.LastActive.Sub(timer.Created) != 10*time.Minute {
		t.Errorf("Created should not move on activation")
	}

	tr.OnTabRemoved("tab-1")
	if _, ok := tr.Lookup("tab-1"); ok {
		t.Error("tab-1 should be gone after removal")
	}
	if tr.Count() != 0 {
		t.Errorf("Count() = %d, want 0", tr.Count())
	}
}

func TestTrackerActivationDiscoversUnknownTab(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock.Now)

	// Tab existed before the tracker started; first event is activation.
	tr.OnTabActivated("pre-existing")

	timer, ok := tr.Lookup("pre-existing")
	if !ok {
		t.Fatal("activation should lazily create a timer")
	}
	if !timer.Created.Equal(clock.Now()) {
		t.Errorf("lazily discovered tab Created = %v, want %v", timer.Created, clock.Now())
	}
}

func TestTrackerDuplicateCreationOverwrites(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock.Now)

	tr.OnTabCreated("tab-1")
	clock.Advance(time.Hour)
	tr.OnTabCreated("tab-1")

	timer, _ := tr.Lookup("tab-1")
	if !timer.Created.Equal(clock.Now()) {
		t.Error("second creation event should overwrite the timer")
	}
	if tr.Count() != 1 {
		t.Errorf("Count() = %d, want 1", tr.Count())
	}
}

func TestTrackerRemoveUnknownIsNoop(t *testing.T) {
	tr := NewTracker(nil)
	tr.OnTabRemoved("never-seen") // must not panic
	if tr.Count() != 0 {
		t.Errorf("Count() = %d, want 0", tr.Count())
	}
}

func TestTrackerUpdate(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock.Now)

	tr.OnTabCreated("tab-1")
	created := clock.Now()

	clock.Advance(5 * time.Minute)

	// Update without URL change is ignored.
	tr.OnTabUpdated("tab-1", false)
	timer, _ := tr.Lookup("tab-1")
	if !timer.LastActive.Equal(created) {
		t.Error("update without url change should not touch LastActive")
	}

	// Update with URL change refreshes LastActive.
	tr.OnTabUpdated("tab-1", true)
	timer, _ = tr.Lookup("tab-1")
	if !timer.LastActive.Equal(clock.Now()) {
		t.Error("update with url change should refresh LastActive")
	}

	// Update never creates a timer for an untracked tab.
	tr.OnTabUpdated("untracked", true)
	if _, ok := tr.Lookup("untracked"); ok {
		t.Error("update events must not initialize tracking")
	}
}

func TestTrackerEventSequenceInvariant(t *testing.T) {
	// For any sequence of events, the tracker holds exactly one entry per
	// observed tab that has not received a removal event.
	clock := newFakeClock()
	tr := NewTracker(clock.Now)

	tr.OnTabCreated("a")
	tr.OnTabActivated("b")
	tr.OnTabCreated("c")
	tr.OnTabUpdated("d", true) // untracked: ignored
	tr.OnTabActivated("a")
	tr.OnTabRemoved("b")
	tr.OnTabRemoved("b") // repeated removal: no-op

	snap := tr.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() has %d entries, want 2: %v", len(snap), snap)
	}
	for _, id := range []domain.TabID{"a", "c"} {
		if _, ok := snap[id]; !ok {
			t.Errorf("expected %q to be tracked", id)
		}
	}
	if _, ok := snap["b"]; ok {
		t.Error("removed tab must not be tracked")
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker(nil)
	tr.OnTabCreated("a")
	tr.OnTabCreated("b")
	tr.Reset()
	if tr.Count() != 0 {
		t.Errorf("Count() after Reset = %d, want 0", tr.Count())
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker(nil)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := domain.TabID(rune('a' + n))
			tr.OnTabCreated(id)
			tr.OnTabActivated(id)
			tr.OnTabUpdated(id, true)
			tr.Lookup(id)
			tr.Snapshot()
		}(i)
	}
	wg.Wait()

	if tr.Count() != 10 {
		t.Errorf("Count() = %d, want 10", tr.Count())
	}
}
