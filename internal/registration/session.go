package registration

import (
	"sync"
	"time"
)

// State identifies the step a user is at in the registration dialog.
type State int

const (
	StateNone State = iota
	StateAwaitingAgreement
	StateAwaitingPhone
	StateAwaitingConflict
)

// Session is the ephemeral per-user registration state. It is never
// persisted; a restart simply restarts the dialog.
type Session struct {
	State        State
	PendingPhone int64 // phone awaiting conflict confirmation
	UpdatedAt    time.Time
}

// SessionStore keeps registration sessions keyed by Telegram user id.
// Safe for concurrent use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

// Get returns a copy of the user's session, if one exists.
func (s *SessionStore) Get(userID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Put replaces the user's session with the given state and payload.
func (s *SessionStore) Put(userID int64, state State, pendingPhone int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[userID] = &Session{
		State:        state,
		PendingPhone: pendingPhone,
		UpdatedAt:    time.Now(),
	}
}

// Touch refreshes the session's timestamp so an actively conversing
// user is not purged mid-dialog.
func (s *SessionStore) Touch(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		sess.UpdatedAt = time.Now()
	}
}

// Clear removes the user's session. Returns whether one existed.
func (s *SessionStore) Clear(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok
}

// PurgeStale drops sessions idle for longer than ttl and returns how
// many were removed. Abandoned dialogs fall back to StateNone so the
// next message restarts the agreement flow.
func (s *SessionStore) PurgeStale(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	purged := 0
	for userID, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, userID)
			purged++
		}
	}
	return purged
}
