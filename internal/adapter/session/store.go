// Package session keeps one active conversation per user in memory.
package session

import (
	"sync"
	"time"

	"github.com/heartmarshall/atelier-bot/internal/domain"
)

// Store is a user-keyed session map safe for concurrent use. Different users
// never contend on the same entry; a second Set for one user overwrites in place.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]domain.Session
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires sessions idle longer than ttl. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[int64]domain.Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the user's session. A missing or expired session is reported
// with ok=false and an idle Session value, not an error.
func (s *Store) Get(userID int64) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(userID)
	if !ok {
		return domain.Session{UserID: userID, State: domain.StateIdle}, false
	}
	return sess, true
}

// Set replaces the state tag and merges patch into the existing data.
func (s *Store) Set(userID int64, state domain.State, patch domain.SessionData) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, _ := s.live(userID)
	sess.UserID = userID
	sess.State = state
	sess.Data = sess.Data.Merge(patch)
	sess.UpdatedAt = s.now()
	s.sessions[userID] = sess
	return sess
}

// Clear drops the user's session. Clearing an absent session is a no-op.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Sweep removes sessions not touched for longer than the TTL and returns how
// many were removed. It does nothing when no TTL is configured.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// live returns the user's session, dropping it first if it has expired.
// Callers hold mu.
func (s *Store) live(userID int64) (domain.Session, bool) {
	sess, ok := s.sessions[userID]
	if !ok {
		return domain.Session{}, false
	}
	if s.expired(sess, s.now()) {
		delete(s.sessions, userID)
		return domain.Session{}, false
	}
	return sess, true
}

func (s *Store) expired(sess domain.Session, now time.Time) bool {
	return s.ttl > 0 && sess.UpdatedAt.Before(now.Add(-s.ttl))
}
