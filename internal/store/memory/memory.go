package memory

import (
	"context"
	"sync"

	"github.com/tabkeep/tabkeepd/internal/domain"
	"github.com/tabkeep/tabkeepd/internal/store"
)

// Store is an in-memory storage backbone with the same observable
// behavior as the Redis one: fixed keys, insertion-ordered bookmarks,
// and a best-effort change feed. It backs unit tests and any context
// that needs a backbone without a Redis connection.
type Store struct {
	mu        sync.RWMutex
	session   domain.Session
	bookmarks []domain.BookmarkEntry
	settings  map[string]bool
	watchers  map[int]chan store.Change
	nextWatch int
}

// NewStore creates an empty in-memory backbone.
func NewStore() *Store {
	return &Store{
		settings: make(map[string]bool),
		watchers: make(map[int]chan store.Change),
	}
}

var _ store.Backbone = (*Store)(nil)

// SaveSession overwrites the session fields. Idempotent by construction.
func (s *Store) SaveSession(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	prev := s.session
	s.session.SyncToken = sess.SyncToken
	s.session.UserID = sess.UserID
	s.session.UserEmail = sess.UserEmail
	s.session.AuthTimestamp = sess.AuthTimestamp
	if sess.AvatarImage != "" {
		s.session.AvatarImage = sess.AvatarImage
	}
	s.mu.Unlock()

	s.notify(store.KeySyncToken, store.KeyUserID, store.KeyUserEmail, store.KeyAuthTimestamp)
	if sess.AvatarImage != "" && sess.AvatarImage != prev.AvatarImage {
		s.notify(store.KeyAvatarImage)
	}
	return nil
}

func (s *Store) GetSession(context.Context) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := s.session
	return &sess, nil
}

func (s *Store) ClearSession(context.Context) error {
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	s.notify(store.KeySyncToken, store.KeyUserID, store.KeyUserEmail,
		store.KeyAvatarImage, store.KeyAuthTimestamp)
	return nil
}

func (s *Store) SetAvatar(_ context.Context, imageURL string) error {
	s.mu.Lock()
	s.session.AvatarImage = imageURL
	s.mu.Unlock()

	s.notify(store.KeyAvatarImage)
	return nil
}

func (s *Store) AppendBookmark(_ context.Context, entry *domain.BookmarkEntry) error {
	s.mu.Lock()
	s.bookmarks = append(s.bookmarks, *entry)
	s.mu.Unlock()

	s.notify(store.KeyBookmarks)
	return nil
}

func (s *Store) Bookmarks(context.Context) ([]*domain.BookmarkEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.BookmarkEntry, 0, len(s.bookmarks))
	for i := range s.bookmarks {
		entry := s.bookmarks[i]
		out = append(out, &entry)
	}
	return out, nil
}

func (s *Store) RemoveBookmark(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	found := false
	remaining := s.bookmarks[:0]
	for _, entry := range s.bookmarks {
		if entry.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, entry)
	}
	s.bookmarks = remaining
	s.mu.Unlock()

	if found {
		s.notify(store.KeyBookmarks)
	}
	return found, nil
}

func (s *Store) AutoCloseEnabled(context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings[store.KeyAutoCloseEnabled], nil
}

func (s *Store) SetAutoCloseEnabled(_ context.Context, enabled bool) error {
	s.mu.Lock()
	s.settings[store.KeyAutoCloseEnabled] = enabled
	s.mu.Unlock()

	s.notify(store.KeyAutoCloseEnabled)
	return nil
}

func (s *Store) VPNEnabled(context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings[store.KeyVPNEnabled], nil
}

func (s *Store) SetVPNEnabled(_ context.Context, enabled bool) error {
	s.mu.Lock()
	s.settings[store.KeyVPNEnabled] = enabled
	s.mu.Unlock()

	s.notify(store.KeyVPNEnabled)
	return nil
}

// Watch registers a change observer. Sends are non-blocking: a full
// observer channel drops the event.
func (s *Store) Watch(context.Context) (<-chan store.Change, func()) {
	s.mu.Lock()
	id := s.nextWatch
	s.nextWatch++
	ch := make(chan store.Change, 16)
	s.watchers[id] = ch
	s.mu.Unlock()

	stop := func() {
		s.mu.Lock()
		if w, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(w)
		}
		s.mu.Unlock()
	}
	return ch, stop
}

func (s *Store) notify(keys ...string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range keys {
		for _, ch := range s.watchers {
			select {
			case ch <- store.Change{Key: key}:
			default:
			}
		}
	}
}
