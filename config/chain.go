package config

import (
	"context"
	"fmt"
	"path/filepath"
)

// Supported chain names.
const (
	ChainMain    = "main"
	ChainTest    = "test"
	ChainRegtest = "regtest"
)

const (
	// WalletFileName is the wallet database inside a chain directory.
	WalletFileName = "walletbridge-wallet.db"

	// LogFileName is the wallet debug log inside a chain directory.
	LogFileName = "walletbridge-wallet.debug.log"
)

// SaplingActivationHeight returns the lowest height a wallet birthday may
// have on chain.
func SaplingActivationHeight(chain string) (uint64, error) {
	switch chain {
	case ChainMain:
		return 419200, nil
	case ChainTest:
		return 280000, nil
	case ChainRegtest:
		return 1, nil
	default:
		return 0, fmt.Errorf("unknown chain %q", chain)
	}
}

// ChainDir returns the data directory for chain below root.
func ChainDir(root, chain string) (string, error) {
	switch chain {
	case ChainMain:
		return root, nil
	case ChainTest:
		return filepath.Join(root, "testnet3"), nil
	case ChainRegtest:
		return filepath.Join(root, "regtest"), nil
	default:
		return "", fmt.Errorf("unknown chain %q", chain)
	}
}

// ChainInfoSource reports which chain a server serves and its latest height.
type ChainInfoSource interface {
	LatestBlock(ctx context.Context, server string, dangerous bool) (chain string, height uint64, err error)
}

// StaticChainInfo answers every server with the same chain and height. It is
// used offline and in tests.
type StaticChainInfo struct {
	Chain  string
	Height uint64
}

// LatestBlock implements ChainInfoSource.
func (s StaticChainInfo) LatestBlock(ctx context.Context, _ string, _ bool) (string, uint64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	return s.Chain, s.Height, nil
}

// ChainInfoFunc adapts a function to ChainInfoSource.
type ChainInfoFunc func(ctx context.Context, server string, dangerous bool) (string, uint64, error)

// LatestBlock implements ChainInfoSource.
func (f ChainInfoFunc) LatestBlock(ctx context.Context, server string, dangerous bool) (string, uint64, error) {
	return f(ctx, server, dangerous)
}
