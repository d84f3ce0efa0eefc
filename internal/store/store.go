package store

import (
	"context"

	"github.com/tabkeep/tabkeepd/internal/domain"
)

// Logical key names in the storage backbone. The synced keys propagate
// across a user's installs; the local keys stay on one machine.
const (
	// Synced keys
	KeySyncToken     = "tabkeepSyncToken"
	KeyUserID        = "tabkeepUserId"
	KeyUserEmail     = "tabkeepUserEmail"
	KeyAvatarImage   = "avatarImage"
	KeyAuthTimestamp = "authTimestamp"
	KeyBookmarks     = "bookmarks"

	// Local keys
	KeyVPNEnabled       = "vpnEnabled"
	KeyAutoCloseEnabled = "autoCloseEnabled"
)

// Change notifies observers that the value under Key changed.
// It is the storage-change event every context may react to; observers
// re-read the store rather than trusting any payload, so delivering the
// same change twice, or out of order with a broadcast, converges on the
// same state.
type Change struct {
	Key string
}

// Backbone is the shared persistent key-value store that all contexts
// (scanner, relay, popup view) read and write. It is never locked:
// each key has one logical writer by convention, and values are written
// so that replaying a write is idempotent.
type Backbone interface {
	// Session
	SaveSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context) (*domain.Session, error)
	ClearSession(ctx context.Context) error
	SetAvatar(ctx context.Context, imageURL string) error

	// Bookmarks
	AppendBookmark(ctx context.Context, entry *domain.BookmarkEntry) error
	Bookmarks(ctx context.Context) ([]*domain.BookmarkEntry, error)
	RemoveBookmark(ctx context.Context, id string) (bool, error)

	// Settings
	AutoCloseEnabled(ctx context.Context) (bool, error)
	SetAutoCloseEnabled(ctx context.Context, enabled bool) error
	VPNEnabled(ctx context.Context) (bool, error)
	SetVPNEnabled(ctx context.Context, enabled bool) error

	// Watch returns a feed of storage changes and a stop function.
	// The feed is best-effort: slow observers may miss changes and are
	// expected to reload the store when they do get one.
	Watch(ctx context.Context) (<-chan Change, func())
}
