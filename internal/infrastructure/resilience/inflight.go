package resilience

import (
	"errors"
	"sync"
)

// ErrInFlight is returned when an identical operation is already running
var ErrInFlight = errors.New("operation already in progress")

// InFlight rejects duplicate concurrent operations by key. It does not queue
// or share results; a second caller is turned away until the first releases.
type InFlight struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewInFlight creates an empty guard
func NewInFlight() *InFlight {
	return &InFlight{active: make(map[string]struct{})}
}

// Acquire claims key. The returned release func must be called exactly once.
func (f *InFlight) Acquire(key string) (release func(), err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.active[key]; busy {
		return nil, ErrInFlight
	}
	f.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.active, key)
			f.mu.Unlock()
		})
	}, nil
}

// Len returns the number of keys currently held
func (f *InFlight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}
