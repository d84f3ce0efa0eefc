package relay

import (
	"context"
	"testing"
	"time"

	"github.com/tabkeep/tabkeepd/internal/logger"
	"github.com/tabkeep/tabkeepd/internal/store/memory"
)

func newTestRelay(t *testing.T) (*Relay, *memory.Store, *Bus) {
	t.Helper()
	st := memory.NewStore()
	bus := NewBus()
	origins := NewOriginAllowlist([]string{"https://tabkeep.app", "*.vercel.app"})
	fixed := func() time.Time { return time.UnixMilli(1700000000000) }
	return New(st, bus, origins, logger.New("error", false), fixed), st, bus
}

func TestHandleAuthSuccess(t *testing.T) {
	ctx := context.Background()
	r, st, bus := newTestRelay(t)

	events, cancel := bus.Subscribe()
	defer cancel()

	raw := []byte(`{"type":"TABKEEP_AUTH_SUCCESS","syncToken":"WBEStok","userId":"u1","userEmail":"u@tabkeep.app"}`)
	reply, err := r.HandleWindowMessage(ctx, "https://tabkeep.app", raw)
	if err != nil {
		t.Fatal(err)
	}

	confirmed, ok := reply.(AuthConfirmed)
	if !ok || !confirmed.Success {
		t.Fatalf("reply = %+v (%T), want successful AuthConfirmed", reply, reply)
	}

	sess, err := st.GetSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sess.SyncToken != "WBEStok" || sess.UserID != "u1" {
		t.Errorf("stored session = %+v", sess)
	}
	if sess.AuthTimestamp != 1700000000000 {
		t.Errorf("missing timestamp should default to relay clock, got %d", sess.AuthTimestamp)
	}

	// The broadcast path carries the same state.
	select {
	case msg := <-events:
		state, ok := msg.(AuthStateChanged)
		if !ok || !state.IsAuthenticated || state.SyncToken != "WBEStok" {
			t.Errorf("broadcast = %+v (%T)", msg, msg)
		}
	default:
		t.Error("expected AuthStateChanged broadcast")
	}
}

func TestHandleAuthSuccessIdempotent(t *testing.T) {
	ctx := context.Background()
	r, st, _ := newTestRelay(t)

	raw := []byte(`{"type":"TABKEEP_AUTH_SUCCESS","syncToken":"tok","userId":"u1","userEmail":"e","timestamp":123}`)
	if _, err := r.HandleWindowMessage(ctx, "https://tabkeep.app", raw); err != nil {
		t.Fatal(err)
	}
	first, _ := st.GetSession(ctx)

	if _, err := r.HandleWindowMessage(ctx, "https://tabkeep.app", raw); err != nil {
		t.Fatal(err)
	}
	second, _ := st.GetSession(ctx)

	if *first != *second {
		t.Errorf("applying the same payload twice diverged: %+v vs %+v", first, second)
	}
}

func TestForeignOriginIsDropped(t *testing.T) {
	ctx := context.Background()
	r, st, bus := newTestRelay(t)

	events, cancel := bus.Subscribe()
	defer cancel()

	raw := []byte(`{"type":"TABKEEP_AUTH_SUCCESS","syncToken":"tok","userId":"u1"}`)
	reply, err := r.HandleWindowMessage(ctx, "https://evil.example.com", raw)
	if err != nil {
		t.Fatal(err)
	}
	if reply != nil {
		t.Errorf("foreign origin got a reply: %+v", reply)
	}

	sess, _ := st.GetSession(ctx)
	if sess.Authenticated() {
		t.Error("foreign origin must not mutate the store")
	}
	select {
	case msg := <-events:
		t.Errorf("foreign origin must not broadcast, got %+v", msg)
	default:
	}
}

func TestMalformedAndUnknownMessagesIgnored(t *testing.T) {
	ctx := context.Background()
	r, st, _ := newTestRelay(t)

	for _, raw := range []string{`not json`, `{"type":"WHO_KNOWS"}`, `{"x":1}`} {
		reply, err := r.HandleWindowMessage(ctx, "https://tabkeep.app", []byte(raw))
		if err != nil {
			t.Errorf("HandleWindowMessage(%q) error: %v", raw, err)
		}
		if reply != nil {
			t.Errorf("HandleWindowMessage(%q) reply = %+v, want silence", raw, reply)
		}
	}

	sess, _ := st.GetSession(ctx)
	if sess.Authenticated() {
		t.Error("ignored messages must not mutate the store")
	}
}

func TestHandleProfileUpdate(t *testing.T) {
	ctx := context.Background()
	r, st, _ := newTestRelay(t)

	raw := []byte(`{"type":"TABKEEP_PROFILE_UPDATE","avatarImage":"https://tabkeep.app/avatars/7.svg"}`)
	reply, err := r.HandleWindowMessage(ctx, "https://preview.vercel.app", raw)
	if err != nil {
		t.Fatal(err)
	}
	if confirmed, ok := reply.(ProfileUpdateConfirmed); !ok || !confirmed.Success {
		t.Fatalf("reply = %+v (%T)", reply, reply)
	}

	sess, _ := st.GetSession(ctx)
	if sess.AvatarImage != "https://tabkeep.app/avatars/7.svg" {
		t.Errorf("avatar = %q", sess.AvatarImage)
	}

	// Profile update without an image is silently ignored.
	reply, err = r.HandleWindowMessage(ctx, "https://tabkeep.app", []byte(`{"type":"TABKEEP_PROFILE_UPDATE"}`))
	if err != nil || reply != nil {
		t.Errorf("empty profile update: reply=%v err=%v, want silence", reply, err)
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	r, st, bus := newTestRelay(t)

	raw := []byte(`{"type":"TABKEEP_AUTH_SUCCESS","syncToken":"tok","userId":"u1"}`)
	if _, err := r.HandleWindowMessage(ctx, "https://tabkeep.app", raw); err != nil {
		t.Fatal(err)
	}

	events, cancel := bus.Subscribe()
	defer cancel()

	if err := r.Logout(ctx); err != nil {
		t.Fatal(err)
	}

	sess, _ := st.GetSession(ctx)
	if sess.Authenticated() {
		t.Error("session should be cleared after logout")
	}

	select {
	case msg := <-events:
		state, ok := msg.(AuthStateChanged)
		if !ok || state.IsAuthenticated {
			t.Errorf("broadcast = %+v", msg)
		}
	default:
		t.Error("expected unauthenticated broadcast")
	}
}

func TestBusPublishWithoutListeners(t *testing.T) {
	bus := NewBus()
	// Must not block or panic with nobody listening.
	bus.Publish(AuthStateChanged{IsAuthenticated: true})
	if bus.Listeners() != 0 {
		t.Errorf("Listeners() = %d, want 0", bus.Listeners())
	}
}

func TestBusSlowSubscriberDropsMessages(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	// Overfill the subscriber buffer; publishes must never block.
	for i := 0; i < 50; i++ {
		bus.Publish(GetTabStats{})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received == 0 || received > 50 {
		t.Errorf("received %d messages, want 1..50", received)
	}
}
