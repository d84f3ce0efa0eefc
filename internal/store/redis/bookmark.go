package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tabkeep/tabkeepd/internal/domain"
	"github.com/tabkeep/tabkeepd/internal/store"
)

// Bookmarks live in a Redis list so insertion order survives round trips,
// like the flat array the popup has always kept under the bookmarks key.

// AppendBookmark adds one entry to the end of the bookmark list.
func (s *Store) AppendBookmark(ctx context.Context, entry *domain.BookmarkEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	if err := s.client.RPush(ctx, SyncKey(store.KeyBookmarks), data).Err(); err != nil {
		return fmt.Errorf("failed to append bookmark: %w", err)
	}

	s.publish(ctx, store.KeyBookmarks)
	return nil
}

// Bookmarks returns all entries in insertion order.
func (s *Store) Bookmarks(ctx context.Context) ([]*domain.BookmarkEntry, error) {
	raw, err := s.client.LRange(ctx, SyncKey(store.KeyBookmarks), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	entries := make([]*domain.BookmarkEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.BookmarkEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			// Skip entries that couldn't be decoded
			continue
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

// RemoveBookmark deletes the entry with the given id, keeping the
// relative order of the remaining entries. The read-filter-rewrite is
// not atomic against a concurrent writer; the bookmark list has a single
// logical writer (the popup), so last write wins is acceptable here.
func (s *Store) RemoveBookmark(ctx context.Context, id string) (bool, error) {
	entries, err := s.Bookmarks(ctx)
	if err != nil {
		return false, err
	}

	remaining := make([]interface{}, 0, len(entries))
	found := false
	for _, entry := range entries {
		if entry.ID == id {
			found = true
			continue
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return false, fmt.Errorf("failed to marshal bookmark %s: %w", entry.ID, err)
		}
		remaining = append(remaining, data)
	}

	if !found {
		return false, nil
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, SyncKey(store.KeyBookmarks))
	if len(remaining) > 0 {
		pipe.RPush(ctx, SyncKey(store.KeyBookmarks), remaining...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to rewrite bookmarks: %w", err)
	}

	s.publish(ctx, store.KeyBookmarks)
	return true, nil
}
