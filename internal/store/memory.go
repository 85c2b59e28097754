package store

import (
	"slices"
	"sync"

	"github.com/agbru/ordersim/internal/order"
)

// MemoryStore is an in-process ResultStore. A single RWMutex serializes
// structural changes (insert, clear) against per-entry updates.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*order.ProcessingResult // newest first
	byID    map[string]*order.ProcessingResult

	watchMu  sync.Mutex
	watchers map[int]chan struct{}
	nextW    int
}

var (
	_ ResultStore = (*MemoryStore)(nil)
	_ Watcher     = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]*order.ProcessingResult),
		watchers: make(map[int]chan struct{}),
	}
}

// InsertAtFront implements ResultStore.
func (s *MemoryStore) InsertAtFront(r order.ProcessingResult) {
	s.mu.Lock()
	if existing, ok := s.byID[r.OrderID]; ok {
		*existing = r
	} else {
		entry := r
		s.entries = slices.Insert(s.entries, 0, &entry)
		s.byID[r.OrderID] = &entry
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateByID implements ResultStore.
func (s *MemoryStore) UpdateByID(id string, patch Patch) bool {
	s.mu.Lock()
	existing, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	next := *existing
	patch(&next)
	if next.Progress < existing.Progress {
		s.mu.Unlock()
		return false
	}
	changed := next != *existing
	*existing = next
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return true
}

// Clear implements ResultStore.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = nil
	clear(s.byID)
	s.mu.Unlock()
	s.notify()
}

// Snapshot implements ResultStore.
func (s *MemoryStore) Snapshot() []order.ProcessingResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]order.ProcessingResult, len(s.entries))
	for i, e := range s.entries {
		out[i] = *e
	}
	return out
}

// Get implements ResultStore.
func (s *MemoryStore) Get(id string) (order.ProcessingResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.byID[id]; ok {
		return *e, true
	}
	return order.ProcessingResult{}, false
}

// Len implements ResultStore.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Watch implements Watcher.
func (s *MemoryStore) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.watchMu.Lock()
	id := s.nextW
	s.nextW++
	s.watchers[id] = ch
	s.watchMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.watchMu.Lock()
			delete(s.watchers, id)
			s.watchMu.Unlock()
		})
	}
}

func (s *MemoryStore) notify() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
