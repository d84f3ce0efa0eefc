package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/tabkeep/tabkeepd/internal/domain"
	"github.com/tabkeep/tabkeepd/internal/store"
)

// Store is the Redis-backed storage backbone.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis-backed backbone.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

var _ store.Backbone = (*Store)(nil)

// SaveSession persists the session fields under their fixed keys.
// The writes are plain SETs, so applying the same session twice leaves
// the store byte-identical: the relay relies on this idempotence.
func (s *Store) SaveSession(ctx context.Context, sess *domain.Session) error {
	pipe := s.client.Pipeline()
	pipe.Set(ctx, SyncKey(store.KeySyncToken), sess.SyncToken, 0)
	pipe.Set(ctx, SyncKey(store.KeyUserID), sess.UserID, 0)
	pipe.Set(ctx, SyncKey(store.KeyUserEmail), sess.UserEmail, 0)
	pipe.Set(ctx, SyncKey(store.KeyAuthTimestamp), sess.AuthTimestamp, 0)
	if sess.AvatarImage != "" {
		pipe.Set(ctx, SyncKey(store.KeyAvatarImage), sess.AvatarImage, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.publish(ctx,
		store.KeySyncToken,
		store.KeyUserID,
		store.KeyUserEmail,
		store.KeyAuthTimestamp,
	)
	if sess.AvatarImage != "" {
		s.publish(ctx, store.KeyAvatarImage)
	}
	return nil
}

// GetSession reads the session keys. An absent token yields an empty,
// unauthenticated session rather than an error.
func (s *Store) GetSession(ctx context.Context) (*domain.Session, error) {
	vals, err := s.client.MGet(ctx,
		SyncKey(store.KeySyncToken),
		SyncKey(store.KeyUserID),
		SyncKey(store.KeyUserEmail),
		SyncKey(store.KeyAvatarImage),
		SyncKey(store.KeyAuthTimestamp),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess := &domain.Session{
		SyncToken:   asString(vals[0]),
		UserID:      asString(vals[1]),
		UserEmail:   asString(vals[2]),
		AvatarImage: asString(vals[3]),
	}
	if ts := asString(vals[4]); ts != "" {
		if ms, err := strconv.ParseInt(ts, 10, 64); err == nil {
			sess.AuthTimestamp = ms
		}
	}
	return sess, nil
}

// ClearSession deletes the session keys (logout). The avatar is cleared
// too: an unauthenticated popup shows no profile.
func (s *Store) ClearSession(ctx context.Context) error {
	err := s.client.Del(ctx,
		SyncKey(store.KeySyncToken),
		SyncKey(store.KeyUserID),
		SyncKey(store.KeyUserEmail),
		SyncKey(store.KeyAvatarImage),
		SyncKey(store.KeyAuthTimestamp),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.publish(ctx,
		store.KeySyncToken,
		store.KeyUserID,
		store.KeyUserEmail,
		store.KeyAvatarImage,
		store.KeyAuthTimestamp,
	)
	return nil
}

// SetAvatar writes the avatar image reference (one-hop profile update).
func (s *Store) SetAvatar(ctx context.Context, imageURL string) error {
	if err := s.client.Set(ctx, SyncKey(store.KeyAvatarImage), imageURL, 0).Err(); err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}
	s.publish(ctx, store.KeyAvatarImage)
	return nil
}

// publish emits one storage-change event per key, best effort.
func (s *Store) publish(ctx context.Context, keys ...string) {
	for _, key := range keys {
		// A missed change only delays observers until the next one.
		_ = s.client.Publish(ctx, ChangeChannel, key).Err()
	}
}

func asString(v interface{}) string {
	if v == nil {
		return ""
	}
	str, _ := v.(string)
	return str
}

// getBool reads a boolean stored as "1"/"0". Missing keys read as false.
func (s *Store) getBool(ctx context.Context, key string) (bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v == "1" || v == "true", nil
}
