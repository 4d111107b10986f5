package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	userID    int64
	expiresAt time.Time
}

// SessionStore keeps opaque-token sessions in memory with a fixed TTL.
// Expired entries are pruned lazily on access.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue creates a session for the user and returns its opaque token.
func (s *SessionStore) Issue(userID int64) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.sessions[token] = session{
		userID:    userID,
		expiresAt: s.now().Add(s.ttl),
	}

	return token
}

// Resolve maps a token to the owning user id; false for unknown or
// expired tokens.
func (s *SessionStore) Resolve(token string) (int64, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok || s.now().After(sess.expiresAt) {
		return 0, false
	}
	return sess.userID, true
}

func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// prune must be called with the write lock held.
func (s *SessionStore) prune() {
	now := s.now()
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
		}
	}
}
