package session

import (
	"context"
	"sync"

	"github.com/tabkeep/tabkeepd/internal/domain"
	"github.com/tabkeep/tabkeepd/internal/logger"
	"github.com/tabkeep/tabkeepd/internal/relay"
	"github.com/tabkeep/tabkeepd/internal/store"
)

// Source is the slice of the backbone the watcher reads.
type Source interface {
	GetSession(ctx context.Context) (*domain.Session, error)
	Watch(ctx context.Context) (<-chan store.Change, func())
}

// Watcher keeps a popup-style view of the current session. It listens on
// both completion paths of the auth protocol, the in-process broadcast
// and the storage-change feed, and reacts to either by reloading the
// session wholesale from the backbone. Because both paths converge on
// the same stored values, the order they arrive in does not matter.
type Watcher struct {
	source Source
	bus    *relay.Bus
	logger logger.Logger

	mu      sync.RWMutex
	current domain.Session

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher. bus may be nil when only the storage
// path is available.
func NewWatcher(source Source, bus *relay.Bus, log logger.Logger) *Watcher {
	return &Watcher{
		source: source,
		bus:    bus,
		logger: log,
		stopCh: make(chan struct{}),
	}
}

// Start loads the current session and begins observing both paths.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.Reload(ctx); err != nil {
		// A failed initial load is not fatal: the view starts
		// unauthenticated and converges on the first change.
		w.logger.Warn("initial session load failed", logger.Error(err))
	}

	changes, stopWatch := w.source.Watch(ctx)

	var busCh <-chan relay.Message
	busCancel := func() {}
	if w.bus != nil {
		busCh, busCancel = w.bus.Subscribe()
	}

	go func() {
		defer stopWatch()
		defer busCancel()

		for {
			select {
			case change, ok := <-changes:
				if !ok {
					return
				}
				if !sessionKey(change.Key) {
					continue
				}
				w.reloadQuiet(ctx)

			case msg, ok := <-busCh:
				if !ok {
					busCh = nil
					continue
				}
				if _, isAuth := msg.(relay.AuthStateChanged); isAuth {
					// The broadcast carries state, but reloading from
					// the store keeps both paths convergent.
					w.reloadQuiet(ctx)
				}

			case <-w.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop ends observation.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Current returns the latest converged session view.
func (w *Watcher) Current() domain.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Reload re-reads the session from the backbone and swaps the view.
func (w *Watcher) Reload(ctx context.Context) error {
	sess, err := w.source.GetSession(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.current = *sess
	w.mu.Unlock()
	return nil
}

func (w *Watcher) reloadQuiet(ctx context.Context) {
	if err := w.Reload(ctx); err != nil {
		w.logger.Warn("session reload failed", logger.Error(err))
	}
}

// sessionKey reports whether a storage change is relevant to the view.
func sessionKey(key string) bool {
	switch key {
	case store.KeySyncToken, store.KeyUserID, store.KeyUserEmail,
		store.KeyAvatarImage, store.KeyAuthTimestamp:
		return true
	}
	return false
}
