// Package user persists accounts. The in-memory store backs unit tests and
// local development; PostgreSQL is the production implementation.
package user

import (
	"context"
	"sync"

	"github.com/willian-mayer/listify/internal/auth/models"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store. It enforces the same email
// uniqueness the database constraint does so service behavior matches
// across backends.
type InMemory struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]models.User
	byEmail map[string]int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[int64]models.User),
		byEmail: make(map[string]int64),
	}
}

// Create assigns an ID and persists the user. Returns sentinel.ErrConflict
// when the email is taken.
func (s *InMemory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return sentinel.ErrConflict
	}
	s.nextID++
	user.ID = s.nextID
	s.byID[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &user, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	user := s.byID[id]
	return &user, nil
}

// Delete removes the user. List cleanup is the caller's responsibility so
// cascade semantics stay in one place (the service transaction).
func (s *InMemory) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, user.Email)
	delete(s.byID, id)
	return nil
}
