package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"gstrecon/internal/domain"
)

// Store is an in-memory session registry keyed by session ID, injected into
// the services that need it. Lifecycle is explicit: Create, Get, Update,
// Delete. Nothing here is process-global.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.Session
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]*domain.Session)}
}

// Create registers a new session for a client and filing period.
func (s *Store) Create(clientName, period string) *domain.Session {
	now := time.Now().UTC()
	sess := &domain.Session{
		ID:         uuid.New(),
		ClientName: clientName,
		Period:     period,
		Status:     domain.SessionStatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns a snapshot of the session. Mutations go through Update so the
// store keeps locking in one place.
func (s *Store) Get(id uuid.UUID) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return *sess, nil
}

// Update applies fn to the session under the store lock.
func (s *Store) Update(id uuid.UUID, fn func(*domain.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	fn(sess)
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes the session.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// List returns snapshots of all sessions in no particular order.
func (s *Store) List() []domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	return out
}
