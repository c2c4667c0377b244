package memory

import (
	"context"
	"testing"
	"time"
)

func TestSessionStore_GetSetRemove(t *testing.T) {
	s := NewSessionStore()

	if _, ok, err := s.GetItem("vw_last"); ok || err != nil {
		t.Fatalf("Expected missing key, got ok=%v err=%v", ok, err)
	}

	s.SetItem("vw_last", `{"count":1}`)
	value, ok, _ := s.GetItem("vw_last")
	if !ok || value != `{"count":1}` {
		t.Errorf("Unexpected value %q ok=%v", value, ok)
	}

	s.RemoveItem("vw_last")
	if _, ok, _ := s.GetItem("vw_last"); ok {
		t.Error("Expected key to be removed")
	}
}

func TestSessionRegistry_SameStorePerSession(t *testing.T) {
	r := NewSessionRegistry(time.Minute)

	a := r.Get("a")
	a.SetItem("vw_last", "x")

	if r.Get("a") != a {
		t.Error("Expected the same store for the same session id")
	}
	if _, ok, _ := r.Get("b").GetItem("vw_last"); ok {
		t.Error("Session b should not see session a's value")
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d", r.Len())
	}
}

func TestSessionRegistry_PurgeIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewSessionRegistry(10 * time.Minute)
	r.now = func() time.Time { return now }

	r.Get("old").SetItem("vw_last", "x")
	now = now.Add(8 * time.Minute)
	r.Get("fresh")
	now = now.Add(5 * time.Minute)

	if purged := r.Purge(); purged != 1 {
		t.Errorf("Expected 1 purged session, got %d", purged)
	}
	if _, ok, _ := r.Get("old").GetItem("vw_last"); ok {
		t.Error("Expected purged session to start empty")
	}
}

func TestSessionRegistry_NoTTL(t *testing.T) {
	r := NewSessionRegistry(0)
	r.Get("a")

	if purged := r.Purge(); purged != 0 {
		t.Errorf("Expected nothing purged without ttl, got %d", purged)
	}
	if r.Len() != 1 {
		t.Errorf("Expected session to be kept, got %d", r.Len())
	}
}

func TestSessionRegistry_RunStops(t *testing.T) {
	r := NewSessionRegistry(time.Nanosecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
