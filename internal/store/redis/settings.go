package redis

import (
	"context"
	"fmt"

	"github.com/tabkeep/tabkeepd/internal/store"
)

// AutoCloseEnabled reads the auto-close flag from the local store.
func (s *Store) AutoCloseEnabled(ctx context.Context) (bool, error) {
	return s.getBool(ctx, LocalKey(store.KeyAutoCloseEnabled))
}

// SetAutoCloseEnabled persists the auto-close flag.
func (s *Store) SetAutoCloseEnabled(ctx context.Context, enabled bool) error {
	if err := s.setBool(ctx, LocalKey(store.KeyAutoCloseEnabled), enabled); err != nil {
		return err
	}
	s.publish(ctx, store.KeyAutoCloseEnabled)
	return nil
}

// VPNEnabled reads the VPN flag from the local store.
func (s *Store) VPNEnabled(ctx context.Context) (bool, error) {
	return s.getBool(ctx, LocalKey(store.KeyVPNEnabled))
}

// SetVPNEnabled persists the VPN flag.
func (s *Store) SetVPNEnabled(ctx context.Context, enabled bool) error {
	if err := s.setBool(ctx, LocalKey(store.KeyVPNEnabled), enabled); err != nil {
		return err
	}
	s.publish(ctx, store.KeyVPNEnabled)
	return nil
}

// EnsureDefaults seeds first-install defaults without clobbering
// anything an earlier run already wrote. Auto-close ships enabled.
func (s *Store) EnsureDefaults(ctx context.Context) error {
	if err := s.client.SetNX(ctx, LocalKey(store.KeyAutoCloseEnabled), "1", 0).Err(); err != nil {
		return fmt.Errorf("failed to seed defaults: %w", err)
	}
	return nil
}

func (s *Store) setBool(ctx context.Context, key string, val bool) error {
	v := "0"
	if val {
		v = "1"
	}
	if err := s.client.Set(ctx, key, v, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
