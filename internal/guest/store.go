package guest

import "sync"

// Store holds the course IDs a not-yet-authenticated visitor has saved on
// their device. It is an ordered set: adds keep first-seen order, duplicates
// are no-ops, and removals of absent IDs are no-ops. There are no error
// conditions; a store at capacity swallows further adds and leaves the
// caller's view unchanged.
type Store struct {
	mu       sync.Mutex
	ids      []string
	present  map[string]bool
	capacity int
}

// DefaultCapacity bounds a guest store the way device-local storage does:
// generously, but not without limit.
const DefaultCapacity = 500

func NewStore() *Store {
	return NewStoreWithCapacity(DefaultCapacity)
}

func NewStoreWithCapacity(capacity int) *Store {
	return &Store{
		present:  make(map[string]bool),
		capacity: capacity,
	}
}

func (s *Store) Add(courseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.present[courseID] || len(s.ids) >= s.capacity {
		return
	}
	s.present[courseID] = true
	s.ids = append(s.ids, courseID)
}

func (s *Store) Remove(courseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present[courseID] {
		return
	}
	delete(s.present, courseID)
	for i, id := range s.ids {
		if id == courseID {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}

func (s *Store) Has(courseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.present[courseID]
}

// List returns the saved IDs in insertion order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Clear empties the store. Called after the contents have been handed off to
// an authenticated account.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.present = make(map[string]bool)
}

// RemoveAll drops the given IDs, tolerating absent ones.
func (s *Store) RemoveAll(courseIDs []string) {
	for _, id := range courseIDs {
		s.Remove(id)
	}
}
