// Package session keeps in-progress intake conversations in memory.
package session

import (
	"sync"
	"time"

	"digistore/internal/domain"
)

// Store holds at most one session per user.
// Sessions are not persisted; a restart sends every user back to the main menu.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]domain.Session

	locksMux sync.Mutex
	locks    map[int64]*sync.Mutex

	now func() time.Time
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]domain.Session),
		locks:    make(map[int64]*sync.Mutex),
		now:      time.Now,
	}
}

// Lock serializes work for one user and returns the matching unlock.
// Different users never block each other.
func (s *Store) Lock(userID int64) func() {
	s.locksMux.Lock()
	lock, exists := s.locks[userID]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.locksMux.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Get returns a copy of the user's session
func (s *Store) Get(userID int64) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	return sess, ok
}

// Set replaces the user's session
func (s *Store) Set(userID int64, sess domain.Session) {
	sess.UpdatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
}

// Clear drops the user's session
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len returns the number of active sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions untouched for longer than maxIdle and returns how many were dropped
func (s *Store) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, userID)
			removed++
		}
	}
	return removed
}
