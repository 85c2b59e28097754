// Package parallel holds small concurrency helpers shared by the
// orchestration layer.
package parallel

import "sync"

// ErrorCollector keeps the first non-nil error reported to it and counts all
// of them. The zero value is ready to use and safe for concurrent use.
type ErrorCollector struct {
	mu    sync.Mutex
	err   error
	count int
}

// SetError records err. Nil errors are ignored; only the first non-nil error
// is kept.
func (c *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	if c.err == nil {
		c.err = err
	}
}

// Err returns the first recorded error, or nil.
func (c *ErrorCollector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Count returns how many non-nil errors were recorded.
func (c *ErrorCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
