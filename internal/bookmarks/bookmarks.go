// Package bookmarks tracks the set of buyers an advisor has marked as
// saved within one project. The set is in-memory; durable persistence is a
// collaborator concern handled through Hydrate and the store's saved_buyers
// table.
package bookmarks

import "sync"

// Set is a project-scoped collection of saved buyer ids. Add is idempotent
// and insertion order is preserved for display. Safe for concurrent use.
type Set struct {
	mu    sync.RWMutex
	ids   map[string]struct{}
	order []string
}

// NewSet returns an empty bookmark set.
func NewSet() *Set {
	return &Set{ids: make(map[string]struct{})}
}

// Hydrate seeds the set from previously persisted ids, preserving the
// given order. Ids already present are skipped.
func (s *Set) Hydrate(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.add(id)
	}
}

// Add marks a buyer as saved. Adding an id that is already present is a
// no-op.
func (s *Set) Add(buyerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(buyerID)
}

func (s *Set) add(buyerID string) {
	if _, ok := s.ids[buyerID]; ok {
		return
	}
	s.ids[buyerID] = struct{}{}
	s.order = append(s.order, buyerID)
}

// Remove unmarks a buyer. Removing an absent id is a no-op.
func (s *Set) Remove(buyerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[buyerID]; !ok {
		return
	}
	delete(s.ids, buyerID)
	for i, id := range s.order {
		if id == buyerID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether a buyer is saved.
func (s *Set) Contains(buyerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[buyerID]
	return ok
}

// List returns the saved ids in insertion order.
func (s *Set) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of saved buyers.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
