// Package session keeps the in-memory billing sessions of the front desk.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sangkips/salon-billing-api/internal/domain/billing"
)

// Store holds billing sessions with an idle TTL and a size cap. The least
// recently used session is evicted first when the cap is reached.
type Store struct {
	cache *expirable.LRU[uuid.UUID, *billing.Session]
}

// NewStore creates a session store
func NewStore(maxSessions int, ttl time.Duration) *Store {
	if maxSessions <= 0 {
		maxSessions = 1024
	}
	return &Store{cache: expirable.NewLRU[uuid.UUID, *billing.Session](maxSessions, nil, ttl)}
}

// Put stores s under its id
func (s *Store) Put(sess *billing.Session) {
	s.cache.Add(sess.ID(), sess)
}

// Get returns the session with id. A hit refreshes its TTL.
func (s *Store) Get(id uuid.UUID) (*billing.Session, bool) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	s.cache.Add(id, sess)
	return sess, true
}

// Delete removes the session with id
func (s *Store) Delete(id uuid.UUID) bool {
	return s.cache.Remove(id)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	return s.cache.Len()
}
