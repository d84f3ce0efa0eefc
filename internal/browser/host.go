package browser

import (
	"context"

	"github.com/tabkeep/tabkeepd/internal/domain"
)

// Host is the browser the daemon manages tabs in.
type Host interface {
	// List returns the currently open tabs.
	List(ctx context.Context) ([]domain.Tab, error)
	// Close closes one tab. Closing a tab that is already gone is not
	// an error.
	Close(ctx context.Context, id domain.TabID) error
}

// EventSink receives tab lifecycle events from the host. The tracker
// implements it.
type EventSink interface {
	OnTabCreated(id domain.TabID)
	OnTabActivated(id domain.TabID)
	OnTabRemoved(id domain.TabID)
	OnTabUpdated(id domain.TabID, urlChanged bool)
}
