package bookmarks

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/tabkeep/tabkeepd/internal/domain"
	"github.com/tabkeep/tabkeepd/internal/logger"
)

// Store is the slice of the backbone the service uses.
type Store interface {
	AppendBookmark(ctx context.Context, entry *domain.BookmarkEntry) error
	Bookmarks(ctx context.Context) ([]*domain.BookmarkEntry, error)
	RemoveBookmark(ctx context.Context, id string) (bool, error)
}

// Service manages user-saved tab snapshots. Entries are append-only and
// immutable; the only mutations are append and delete-by-id.
type Service struct {
	store  Store
	logger logger.Logger
	now    func() time.Time

	mu     sync.Mutex
	lastID int64
}

// NewService creates a bookmark service. now is injectable for tests.
func NewService(store Store, log logger.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:  store,
		logger: log,
		now:    now,
	}
}

// Add snapshots a tab as a new bookmark and returns the stored entry.
func (s *Service) Add(ctx context.Context, tab domain.Tab) (*domain.BookmarkEntry, error) {
	now := s.now()
	entry := &domain.BookmarkEntry{
		ID:         s.nextID(now),
		Title:      tab.Title,
		URL:        tab.URL,
		FavIconURL: tab.FavIconURL,
		Timestamp:  now.UnixMilli(),
	}

	if err := s.store.AppendBookmark(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save bookmark: %w", err)
	}

	s.logger.Info("bookmark saved",
		logger.String("bookmark_id", entry.ID),
		logger.String("url", entry.URL))
	return entry, nil
}

// List returns all bookmarks in insertion order.
func (s *Service) List(ctx context.Context) ([]*domain.BookmarkEntry, error) {
	return s.store.Bookmarks(ctx)
}

// Remove deletes a bookmark by id. Removing an unknown id reports
// found=false without error; remaining entries keep their order.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	found, err := s.store.RemoveBookmark(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove bookmark: %w", err)
	}
	if found {
		s.logger.Info("bookmark removed", logger.String("bookmark_id", id))
	}
	return found, nil
}

// nextID returns a time-based id (epoch milliseconds as a string),
// bumped past the previous one so two bookmarks saved within the same
// millisecond still get distinct ids.
func (s *Service) nextID(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return strconv.FormatInt(ms, 10)
}
