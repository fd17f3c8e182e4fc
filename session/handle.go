package session

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/walletbridge/core"
)

// Handle is a shared, reference-counted reference to a wallet engine. The
// fields are immutable after construction.
type Handle struct {
	id        string
	state     core.State
	config    core.WalletConfig
	engine    core.WalletEngine
	createdAt time.Time

	refs     atomic.Int64
	released chan struct{}
	closeErr error
}

// NewHandle wraps engine with a single reference owned by the caller.
func NewHandle(engine core.WalletEngine, state core.State, cfg core.WalletConfig) *Handle {
	h := &Handle{
		id:        uuid.NewString(),
		state:     state,
		config:    cfg,
		engine:    engine,
		createdAt: time.Now(),
		released:  make(chan struct{}),
	}
	h.refs.Store(1)
	return h
}

// ID returns the unique handle id.
func (h *Handle) ID() string { return h.id }

// State returns how the engine was installed.
func (h *Handle) State() core.State { return h.state }

// Config returns the configuration the engine was constructed with.
func (h *Handle) Config() core.WalletConfig { return h.config }

// Engine returns the wrapped engine.
func (h *Handle) Engine() core.WalletEngine { return h.engine }

// CreatedAt returns the construction time.
func (h *Handle) CreatedAt() time.Time { return h.createdAt }

// Refs returns the current reference count.
func (h *Handle) Refs() int64 { return h.refs.Load() }

// Released is closed once the last reference has been dropped.
func (h *Handle) Released() <-chan struct{} { return h.released }

// acquire adds a reference. It fails if the handle was already released,
// which cannot happen while the slot still owns it.
func (h *Handle) acquire() bool {
	for {
		n := h.refs.Load()
		if n <= 0 {
			return false
		}
		if h.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops one reference. The last release closes the engine when it
// implements io.Closer and returns the close error.
func (h *Handle) Release() error {
	n := h.refs.Add(-1)
	switch {
	case n > 0:
		return nil
	case n < 0:
		return fmt.Errorf("session: handle %s released too many times", h.id)
	}

	if c, ok := h.engine.(io.Closer); ok {
		h.closeErr = c.Close()
	}
	close(h.released)
	return h.closeErr
}
