package progress

import (
	"sync"

	"github.com/agbru/ordersim/internal/logging"
)

// Subject keeps the set of observers of a run.
type Subject struct {
	mu        sync.RWMutex
	nextID    uint64
	observers []registration
}

type registration struct {
	id uint64
	o  Observer
}

// NewSubject returns an empty subject.
func NewSubject() *Subject {
	return &Subject{}
}

// Register adds an observer and returns a function removing it again.
// Nil observers are ignored.
func (s *Subject) Register(o Observer) (unregister func()) {
	if o == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, registration{id: id, o: o})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Subject) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.observers {
		if r.id == id {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

// Freeze snapshots the current observers and returns a Callback bound to one
// job. Observers registered afterwards are not notified through it, so a
// running job never takes the subject lock.
func (s *Subject) Freeze(index int, orderID string) Callback {
	s.mu.RLock()
	snapshot := make([]Observer, len(s.observers))
	for i, r := range s.observers {
		snapshot[i] = r.o
	}
	s.mu.RUnlock()

	return func(percent int) {
		u := Update{Index: index, OrderID: orderID, Percent: percent}
		for _, o := range snapshot {
			o.Update(u)
		}
	}
}

// ChannelObserver forwards updates to a channel. Intermediate updates are
// dropped when the channel is full; terminal updates block until received so
// that consumers always see each job reach 100.
type ChannelObserver struct {
	ch chan<- Update
}

// NewChannelObserver returns an observer writing to ch.
func NewChannelObserver(ch chan<- Update) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Update forwards u to the channel.
func (c *ChannelObserver) Update(u Update) {
	if u.Done() {
		c.ch <- u
		return
	}
	select {
	case c.ch <- u:
	default:
	}
}

// LoggingObserver writes a debug entry each time a job crosses a multiple of
// Step percent.
type LoggingObserver struct {
	logger logging.Logger
	step   int

	mu   sync.Mutex
	last map[string]int
}

// NewLoggingObserver returns an observer logging every step percent.
// A step <= 0 defaults to 25.
func NewLoggingObserver(logger logging.Logger, step int) *LoggingObserver {
	if step <= 0 {
		step = 25
	}
	return &LoggingObserver{logger: logger, step: step, last: make(map[string]int)}
}

// Update logs u when it reaches a new step.
func (l *LoggingObserver) Update(u Update) {
	bucket := u.Percent / l.step
	l.mu.Lock()
	prev, seen := l.last[u.OrderID]
	if seen && bucket <= prev {
		l.mu.Unlock()
		return
	}
	l.last[u.OrderID] = bucket
	l.mu.Unlock()

	l.logger.Debug("order progress",
		logging.String("order_id", u.OrderID),
		logging.Int("index", u.Index),
		logging.Int("percent", u.Percent),
	)
}
