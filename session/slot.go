package session

import (
	"sync"

	"github.com/hupe1980/walletbridge/core"
)

// Slot is a mutex-guarded holder of zero or one Handle.
type Slot struct {
	mu      sync.Mutex
	current *Handle

	// OnRelease, if set, is called after a replaced handle's slot reference
	// was dropped. err is the engine close error when that was the last
	// reference.
	OnRelease func(h *Handle, err error)
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Current returns the active handle with a reference acquired for the
// caller, who must Release it. The second result is false when the slot is
// empty.
func (s *Slot) Current() (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || !s.current.acquire() {
		return nil, false
	}
	return s.current, true
}

// Set installs h, taking over the caller's reference. The previous handle's
// slot reference is released after the lock is dropped. Set(nil) empties the
// slot.
//
// Setting the handle that is already installed is a no-op: the slot keeps
// its own reference and the caller keeps whatever reference it holds.
func (s *Slot) Set(h *Handle) {
	s.mu.Lock()
	prev := s.current
	if prev == h {
		s.mu.Unlock()
		return
	}
	s.current = h
	s.mu.Unlock()

	if prev == nil {
		return
	}
	err := prev.Release()
	if s.OnRelease != nil {
		s.OnRelease(prev, err)
	}
}

// State returns the lifecycle state of the active handle.
func (s *Slot) State() core.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return core.StateAbsent
	}
	return s.current.state
}

// Peek returns the id of the active handle without acquiring it.
func (s *Slot) Peek() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	return s.current.id, true
}
