package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/walletbridge/core"
)

// FactoryCall records one factory invocation.
type FactoryCall struct {
	Op       core.Operation
	Config   core.WalletConfig
	Height   uint64
	Seed     string
	Birthday uint64
}

// FakeFactory is a core.EngineFactory returning engines from NewEngine or a
// fixed error.
type FakeFactory struct {
	// NewEngine builds the engine for a call. Defaults to an echo engine
	// labelled with the server.
	NewEngine func(call FactoryCall) *FakeEngine
	// Err, when set, fails every construction.
	Err error

	mu      sync.Mutex
	calls   []FactoryCall
	engines []*FakeEngine
}

// NewFakeFactory returns a factory producing echo engines.
func NewFakeFactory() *FakeFactory { return &FakeFactory{} }

func (f *FakeFactory) build(call FactoryCall) (core.WalletEngine, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	var e *FakeEngine
	if f.NewEngine != nil {
		e = f.NewEngine(call)
	} else {
		e = NewEngineBuilder(call.Config.Server).Build()
	}

	f.mu.Lock()
	f.engines = append(f.engines, e)
	f.mu.Unlock()
	return e, nil
}

// CreateNew implements core.EngineFactory.
func (f *FakeFactory) CreateNew(_ context.Context, cfg core.WalletConfig, height uint64) (core.WalletEngine, error) {
	return f.build(FactoryCall{Op: core.OpCreate, Config: cfg, Height: height})
}

// Restore implements core.EngineFactory.
func (f *FakeFactory) Restore(_ context.Context, seed string, cfg core.WalletConfig, birthday uint64) (core.WalletEngine, error) {
	return f.build(FactoryCall{Op: core.OpRestore, Config: cfg, Seed: seed, Birthday: birthday})
}

// Load implements core.EngineFactory.
func (f *FakeFactory) Load(_ context.Context, cfg core.WalletConfig) (core.WalletEngine, error) {
	return f.build(FactoryCall{Op: core.OpLoad, Config: cfg})
}

// Calls returns a snapshot of recorded calls.
func (f *FakeFactory) Calls() []FactoryCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FactoryCall(nil), f.calls...)
}

// Engines returns the engines built so far, in construction order.
func (f *FakeFactory) Engines() []*FakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeEngine(nil), f.engines...)
}
