package redis

import (
	"context"
	"strings"

	"github.com/tabkeep/tabkeepd/internal/store"
	"github.com/tabkeep/tabkeepd/internal/utils"
)

// Watch subscribes to the storage-change channel. The returned stop
// function tears the subscription down; the channel is closed after it.
//
// Delivery is best effort: a subscriber that falls behind misses events
// and catches up on the next one by re-reading the store.
func (s *Store) Watch(ctx context.Context) (<-chan store.Change, func()) {
	pubsub := s.client.Subscribe(ctx, ChangeChannel)
	out := make(chan store.Change, 16)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			key := strings.TrimSpace(msg.Payload)
			if key == "" {
				continue
			}
			select {
			case out <- store.Change{Key: key}:
			default:
				// Drop when the observer is slow; it reloads on the
				// next change it does receive.
			}
		}
	}()

	stop := func() {
		utils.Close(pubsub)
	}
	return out, stop
}
