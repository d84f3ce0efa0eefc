package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/tabkeep/tabkeepd/internal/domain"
	"github.com/tabkeep/tabkeepd/internal/logger"
)

// SessionStore is the slice of the storage backbone the relay writes to.
type SessionStore interface {
	SaveSession(ctx context.Context, s *domain.Session) error
	ClearSession(ctx context.Context) error
	SetAvatar(ctx context.Context, imageURL string) error
}

// Relay moves session state from the web page into the storage backbone
// and broadcasts the resulting auth-state change. It is the background
// end of the page → content script → background → storage chain.
type Relay struct {
	store   SessionStore
	bus     *Bus
	origins *OriginAllowlist
	logger  logger.Logger
	now     func() time.Time
}

// New creates a relay. now is injectable for tests; nil defaults to
// time.Now.
func New(store SessionStore, bus *Bus, origins *OriginAllowlist, log logger.Logger, now func() time.Time) *Relay {
	if now == nil {
		now = time.Now
	}
	return &Relay{
		store:   store,
		bus:     bus,
		origins: origins,
		logger:  log,
		now:     now,
	}
}

// HandleWindowMessage processes one message posted by a web page.
//
// The returned message is the confirmation to post back to the page, or
// nil when the relay stays silent: foreign origins, malformed payloads
// and unrecognized kinds all produce no reply and no side effect, and
// the page must infer failure from the missing confirmation.
func (r *Relay) HandleWindowMessage(ctx context.Context, origin string, raw []byte) (Message, error) {
	if !r.origins.Allowed(origin) {
		r.logger.Debug("dropping message from foreign origin",
			logger.String("origin", origin))
		return nil, nil
	}

	msg, err := Decode(raw)
	if err != nil {
		// Malformed messages on the window hop are ignored, not errors.
		r.logger.Debug("ignoring malformed window message",
			logger.String("origin", origin),
			logger.Error(err))
		return nil, nil
	}

	switch m := msg.(type) {
	case AuthSuccess:
		if err := r.handleAuthSuccess(ctx, m); err != nil {
			return nil, err
		}
		return AuthConfirmed{Success: true}, nil

	case ProfileUpdate:
		if m.AvatarImage == "" {
			return nil, nil
		}
		if err := r.store.SetAvatar(ctx, m.AvatarImage); err != nil {
			return nil, fmt.Errorf("failed to store avatar: %w", err)
		}
		r.logger.Info("avatar synced from web page")
		return ProfileUpdateConfirmed{Success: true}, nil

	case AuthConfirmed, ProfileUpdateConfirmed, ExtensionDetected,
		AuthStateChanged, ToggleAutoClose, GetTabStats:
		// Not page-to-extension traffic; nothing to do on this hop.
		return nil, nil

	default:
		return nil, nil
	}
}

// handleAuthSuccess persists the session under the fixed keys and
// broadcasts the new auth state. Applying the same payload twice leaves
// the store in the same final state, so a duplicated relay is harmless.
func (r *Relay) handleAuthSuccess(ctx context.Context, m AuthSuccess) error {
	sess := &domain.Session{
		SyncToken:     m.SyncToken,
		UserID:        m.UserID,
		UserEmail:     m.UserEmail,
		AvatarImage:   m.AvatarID,
		AuthTimestamp: m.Timestamp,
	}
	if sess.AuthTimestamp == 0 {
		sess.AuthTimestamp = r.now().UnixMilli()
	}

	if err := r.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	r.logger.Info("auth state saved",
		logger.String("user_id", m.UserID))

	// Best effort: no listener just means no popup is open right now.
	r.bus.Publish(AuthStateChanged{
		IsAuthenticated: true,
		SyncToken:       m.SyncToken,
		UserID:          m.UserID,
		UserEmail:       m.UserEmail,
	})

	return nil
}

// Logout clears the session keys and broadcasts the unauthenticated
// state. Contexts watching the store observe the deletion too.
func (r *Relay) Logout(ctx context.Context) error {
	if err := r.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	r.logger.Info("session cleared")
	r.bus.Publish(AuthStateChanged{IsAuthenticated: false})
	return nil
}
