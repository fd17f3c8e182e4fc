package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/walletbridge/core"
)

// FakeResolver is a core.ConfigResolver backed by an in-memory set of
// chains that "have" a wallet.
type FakeResolver struct {
	Height uint64
	Err    error

	mu       sync.Mutex
	existing map[string]bool
}

// NewFakeResolver returns a resolver reporting height for every server.
func NewFakeResolver(height uint64) *FakeResolver {
	return &FakeResolver{Height: height, existing: map[string]bool{}}
}

// Resolve implements core.ConfigResolver. The server string is used as the
// chain name so tests can tell resolutions apart.
func (r *FakeResolver) Resolve(_ context.Context, server string, dangerous bool) (core.WalletConfig, uint64, error) {
	if r.Err != nil {
		return core.WalletConfig{}, 0, r.Err
	}
	return core.WalletConfig{Server: server, ChainName: server, Dangerous: dangerous, LatestHeight: r.Height}, r.Height, nil
}

// ResolveUnconnected implements core.ConfigResolver.
func (r *FakeResolver) ResolveUnconnected(chain string) (core.WalletConfig, error) {
	if chain == "" {
		return core.WalletConfig{}, fmt.Errorf("chain is required")
	}
	return core.WalletConfig{ChainName: chain}, nil
}

// WalletExists implements core.ConfigResolver.
func (r *FakeResolver) WalletExists(cfg core.WalletConfig) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.existing[cfg.ChainName]
}

// MarkExisting records that a wallet exists for chain.
func (r *FakeResolver) MarkExisting(chain string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existing[chain] = true
}
