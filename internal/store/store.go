//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Package store keeps the ordered, externally observable collection of
// processing results.
package store

import "github.com/agbru/ordersim/internal/order"

// Patch mutates one stored result in place.
type Patch func(r *order.ProcessingResult)

// SetProgress returns a Patch setting the progress percentage.
func SetProgress(percent int) Patch {
	return func(r *order.ProcessingResult) { r.Progress = percent }
}

// Replace returns a Patch overwriting every field except the order ID.
func Replace(next order.ProcessingResult) Patch {
	return func(r *order.ProcessingResult) {
		id := r.OrderID
		*r = next
		r.OrderID = id
	}
}

// ResultStore is the ordered collection of results keyed by order ID.
// Newest jobs come first. Implementations must be safe for concurrent use.
type ResultStore interface {
	// InsertAtFront adds a freshly started result. If the ID is already
	// present the existing entry is reset to r and keeps its position.
	InsertAtFront(r order.ProcessingResult)
	// UpdateByID applies patch to the entry with the given ID without
	// moving it. It reports whether an entry was updated. Patches that
	// would lower the stored progress are dropped.
	UpdateByID(id string, patch Patch) bool
	// Clear removes every entry.
	Clear()
	// Snapshot returns a copy of the entries, newest first.
	Snapshot() []order.ProcessingResult
	// Get returns a copy of one entry.
	Get(id string) (order.ProcessingResult, bool)
	// Len returns the number of entries.
	Len() int
}

// Watcher is implemented by stores that signal changes.
type Watcher interface {
	// Watch returns a channel receiving a value after changes, coalesced,
	// and a function releasing it.
	Watch() (<-chan struct{}, func())
}
