package registration

import (
	"testing"
	"time"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	if _, ok := store.Get(1); ok {
		t.Fatal("empty store returned a session")
	}

	store.Put(1, StateAwaitingConflict, 9111234567)
	sess, ok := store.Get(1)
	if !ok {
		t.Fatal("session not found after Put")
	}
	if sess.State != StateAwaitingConflict || sess.PendingPhone != 9111234567 {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if sess.UpdatedAt.IsZero() {
		t.Fatal("session has no timestamp")
	}

	if !store.Clear(1) {
		t.Fatal("Clear missed an existing session")
	}
	if store.Clear(1) {
		t.Fatal("Clear reported a session that was already gone")
	}
}

func TestSessionStoreGetReturnsCopy(t *testing.T) {
	store := NewSessionStore()
	store.Put(1, StateAwaitingPhone, 0)

	sess, _ := store.Get(1)
	sess.State = StateAwaitingConflict

	stored, _ := store.Get(1)
	if stored.State != StateAwaitingPhone {
		t.Fatal("mutating the returned session changed the store")
	}
}

func TestSessionStorePurgeStale(t *testing.T) {
	store := NewSessionStore()
	store.Put(1, StateAwaitingAgreement, 0)
	store.Put(2, StateAwaitingConflict, 9111234567)

	if purged := store.PurgeStale(time.Hour); purged != 0 {
		t.Fatalf("PurgeStale dropped %d fresh sessions", purged)
	}

	time.Sleep(5 * time.Millisecond)
	if purged := store.PurgeStale(0); purged != 2 {
		t.Fatalf("PurgeStale dropped %d sessions, want 2", purged)
	}
	if _, ok := store.Get(1); ok {
		t.Fatal("stale session survived the purge")
	}
}

func TestSessionStoreTouchRefreshes(t *testing.T) {
	store := NewSessionStore()
	store.Put(1, StateAwaitingConflict, 9111234567)

	before, _ := store.Get(1)
	time.Sleep(5 * time.Millisecond)
	store.Touch(1)
	after, _ := store.Get(1)

	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatal("Touch did not refresh the timestamp")
	}
}
