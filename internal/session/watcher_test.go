package session

import (
	"context"
	"testing"
	"time"

	"github.com/tabkeep/tabkeepd/internal/domain"
	"github.com/tabkeep/tabkeepd/internal/logger"
	"github.com/tabkeep/tabkeepd/internal/relay"
	"github.com/tabkeep/tabkeepd/internal/store/memory"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWatcherObservesStorageChanges(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	log := logger.New("error", false)

	w := NewWatcher(st, nil, log)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if cur := w.Current(); cur.Authenticated() {
		t.Fatal("fresh watcher should be unauthenticated")
	}

	err := st.SaveSession(ctx, &domain.Session{
		SyncToken: "WBEStok", UserID: "u1", UserEmail: "e", AuthTimestamp: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return w.Current().SyncToken == "WBEStok" })
}

func TestWatcherObservesBusBroadcast(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	bus := relay.NewBus()
	log := logger.New("error", false)

	w := NewWatcher(st, bus, log)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Both completion paths fire here, in no guaranteed order; the
	// watcher must converge on the stored state regardless.
	err := st.SaveSession(ctx, &domain.Session{SyncToken: "tok2", UserID: "u2"})
	if err != nil {
		t.Fatal(err)
	}
	bus.Publish(relay.AuthStateChanged{IsAuthenticated: true, SyncToken: "tok2"})

	waitFor(t, func() bool { return w.Current().SyncToken == "tok2" })
}

func TestWatcherObservesLogout(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	log := logger.New("error", false)

	err := st.SaveSession(ctx, &domain.Session{SyncToken: "tok", UserID: "u"})
	if err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(st, nil, log)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Initial load picks up the stored session.
	waitFor(t, func() bool { cur := w.Current(); return cur.Authenticated() })

	if err := st.ClearSession(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { cur := w.Current(); return !cur.Authenticated() })
}

func TestWatcherEndToEndThroughRelay(t *testing.T) {
	// Allowed-origin auth message lands in the store; a watcher built
	// afterwards (popup opened later) reads the same token back.
	ctx := context.Background()
	st := memory.NewStore()
	bus := relay.NewBus()
	log := logger.New("error", false)

	r := relay.New(st, bus, relay.NewOriginAllowlist([]string{"https://tabkeep.app"}), log, nil)
	raw := []byte(`{"type":"TABKEEP_AUTH_SUCCESS","syncToken":"WBESend2end","userId":"u9"}`)
	if _, err := r.HandleWindowMessage(ctx, "https://tabkeep.app", raw); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(st, bus, log)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	waitFor(t, func() bool {
		cur := w.Current()
		return cur.Authenticated() && cur.SyncToken == "WBESend2end"
	})
}
