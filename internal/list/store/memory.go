// Package store persists lists and items. The in-memory implementation backs
// unit tests and mirrors the PostgreSQL constraints: share-token uniqueness
// and cascade deletion behave identically in both.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/willian-mayer/listify/internal/list/models"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store for lists and items. A single lock
// covers both so cascade deletes and share-token flips are atomic with
// respect to concurrent readers.
type InMemory struct {
	mu         sync.RWMutex
	nextListID int64
	nextItemID int64
	lists      map[int64]models.List
	items      map[int64]models.Item
	byToken    map[string]int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		lists:   make(map[int64]models.List),
		items:   make(map[int64]models.Item),
		byToken: make(map[string]int64),
	}
}

func (s *InMemory) CreateList(_ context.Context, list *models.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListID++
	list.ID = s.nextListID
	s.lists[list.ID] = *list
	return nil
}

func (s *InMemory) FindListByID(_ context.Context, id int64) (*models.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.lists[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &list, nil
}

func (s *InMemory) FindOwnership(_ context.Context, listID int64) (models.Ownership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.lists[listID]
	if !ok {
		return models.Ownership{}, sentinel.ErrNotFound
	}
	return models.Ownership{ListID: list.ID, OwnerID: list.UserID, IsShared: list.IsShared}, nil
}

func (s *InMemory) ListsByOwner(_ context.Context, ownerID int64, offset, limit int) ([]models.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.List
	for _, list := range s.lists {
		if list.UserID == ownerID {
			out = append(out, list)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return []models.List{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) UpdateList(_ context.Context, list *models.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.lists[list.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	// Share state is managed through ClaimShareToken/DisableShare only.
	list.ShareToken = stored.ShareToken
	list.IsShared = stored.IsShared
	s.lists[list.ID] = *list
	return nil
}

// DeleteList removes the list and every item in it, atomically.
func (s *InMemory) DeleteList(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.lists[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if list.ShareToken != nil {
		delete(s.byToken, *list.ShareToken)
	}
	delete(s.lists, id)
	for itemID, item := range s.items {
		if item.ListID == id {
			delete(s.items, itemID)
		}
	}
	return nil
}

func (s *InMemory) FindListByShareToken(_ context.Context, token string) (*models.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listID, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	list := s.lists[listID]
	return &list, nil
}

// ClaimShareToken sets the share token iff the list has none. Returns true
// when the token was claimed, false when an earlier token is already in
// place, and sentinel.ErrConflict when another list holds this token.
func (s *InMemory) ClaimShareToken(_ context.Context, listID int64, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.lists[listID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if list.ShareToken != nil {
		return false, nil
	}
	if _, taken := s.byToken[token]; taken {
		return false, sentinel.ErrConflict
	}
	list.ShareToken = &token
	list.IsShared = true
	s.lists[listID] = list
	s.byToken[token] = listID
	return true, nil
}

// DisableShare clears the token and shared flag together.
func (s *InMemory) DisableShare(_ context.Context, listID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.lists[listID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if list.ShareToken != nil {
		delete(s.byToken, *list.ShareToken)
	}
	list.ShareToken = nil
	list.IsShared = false
	s.lists[listID] = list
	return nil
}

func (s *InMemory) CreateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[item.ListID]; !ok {
		return sentinel.ErrNotFound
	}
	s.nextItemID++
	item.ID = s.nextItemID
	s.items[item.ID] = *item
	return nil
}

func (s *InMemory) FindItemByID(_ context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &item, nil
}

func (s *InMemory) ItemsByList(_ context.Context, listID int64) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Item{}
	for _, item := range s.items {
		if item.ListID == listID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) UpdateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.items[item.ID] = *item
	return nil
}

func (s *InMemory) DeleteItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
