package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/walletbridge/core"
)

// Call records one RunCommand invocation.
type Call struct {
	Name string
	Args []string
}

// FakeEngine is a core.WalletEngine that echoes commands as
// "<label>|<name>|<args...>" unless a responder is configured.
type FakeEngine struct {
	label       string
	seed        core.Seed
	seedErr     error
	diagErr     error
	closeErr    error
	respond     func(name string, args []string) string
	gate        chan struct{}
	entered     chan struct{}
	mu          sync.Mutex
	calls       []Call
	diagCalls   atomic.Int32
	closeCalls  atomic.Int32
	running     atomic.Int32
	maxParallel atomic.Int32
}

// EngineBuilder provides a fluent helper for constructing fake engines.
// Example:
//
//	eng := NewEngineBuilder("a").Seed("alpha beta", 100).Build()
type EngineBuilder struct {
	e *FakeEngine
}

// NewEngineBuilder creates a builder for an engine identified by label.
func NewEngineBuilder(label string) *EngineBuilder {
	return &EngineBuilder{e: &FakeEngine{label: label, seed: core.Seed{Phrase: label + " seed", Birthday: 1}}}
}

// Seed sets the seed returned by SeedPhrase (chainable).
func (b *EngineBuilder) Seed(phrase string, birthday uint64) *EngineBuilder {
	b.e.seed = core.Seed{Phrase: phrase, Birthday: birthday}
	return b
}

// SeedErr makes SeedPhrase fail (chainable).
func (b *EngineBuilder) SeedErr(err error) *EngineBuilder { b.e.seedErr = err; return b }

// DiagnosticsErr makes InitDiagnostics fail (chainable).
func (b *EngineBuilder) DiagnosticsErr(err error) *EngineBuilder { b.e.diagErr = err; return b }

// CloseErr makes Close fail (chainable).
func (b *EngineBuilder) CloseErr(err error) *EngineBuilder { b.e.closeErr = err; return b }

// Responder overrides the echo response (chainable).
func (b *EngineBuilder) Responder(fn func(name string, args []string) string) *EngineBuilder {
	b.e.respond = fn
	return b
}

// Gated makes every RunCommand signal Entered and then block until Open is
// called (chainable).
func (b *EngineBuilder) Gated() *EngineBuilder {
	b.e.gate = make(chan struct{})
	b.e.entered = make(chan struct{}, 64)
	return b
}

// Build returns the configured engine.
func (b *EngineBuilder) Build() *FakeEngine { return b.e }

// Label returns the engine label.
func (e *FakeEngine) Label() string { return e.label }

// InitDiagnostics implements core.WalletEngine.
func (e *FakeEngine) InitDiagnostics() error {
	e.diagCalls.Add(1)
	return e.diagErr
}

// SeedPhrase implements core.WalletEngine.
func (e *FakeEngine) SeedPhrase() (core.Seed, error) {
	if e.seedErr != nil {
		return core.Seed{}, e.seedErr
	}
	return e.seed, nil
}

// RunCommand implements core.WalletEngine.
func (e *FakeEngine) RunCommand(_ context.Context, name string, args []string) string {
	n := e.running.Add(1)
	for {
		m := e.maxParallel.Load()
		if n <= m || e.maxParallel.CompareAndSwap(m, n) {
			break
		}
	}
	defer e.running.Add(-1)

	e.mu.Lock()
	e.calls = append(e.calls, Call{Name: name, Args: append([]string(nil), args...)})
	e.mu.Unlock()

	if e.gate != nil {
		e.entered <- struct{}{}
		<-e.gate
	}
	if e.respond != nil {
		return e.respond(name, args)
	}
	return strings.Join(append([]string{e.label, name}, args...), "|")
}

// Close implements io.Closer.
func (e *FakeEngine) Close() error {
	e.closeCalls.Add(1)
	return e.closeErr
}

// Entered returns a channel receiving one value per gated command entry.
func (e *FakeEngine) Entered() <-chan struct{} { return e.entered }

// Open releases all gated commands.
func (e *FakeEngine) Open() { close(e.gate) }

// Calls returns a snapshot of recorded RunCommand calls.
func (e *FakeEngine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// DiagnosticsCalls returns how often InitDiagnostics ran.
func (e *FakeEngine) DiagnosticsCalls() int { return int(e.diagCalls.Load()) }

// CloseCalls returns how often Close ran.
func (e *FakeEngine) CloseCalls() int { return int(e.closeCalls.Load()) }

// MaxParallel returns the highest number of concurrently running commands observed.
func (e *FakeEngine) MaxParallel() int { return int(e.maxParallel.Load()) }

// String implements fmt.Stringer.
func (e *FakeEngine) String() string { return fmt.Sprintf("FakeEngine(%s)", e.label) }
