package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/walletbridge/core"
)

// DefaultServer is used when no server URI is supplied.
const DefaultServer = "https://lightwalletd.zecwallet.co:1443"

// ServerOrDefault normalizes a server URI: empty selects fallback (or
// DefaultServer), a missing scheme becomes https and a missing port is
// filled from the scheme.
func ServerOrDefault(uri, fallback string) (string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		uri = fallback
	}
	if uri == "" {
		uri = DefaultServer
	}
	if !strings.Contains(uri, "://") {
		uri = "https://" + uri
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid server uri %q: %w", uri, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid server uri %q: unsupported scheme %q", uri, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid server uri %q: missing host", uri)
	}
	if u.Port() == "" {
		port := "443"
		if u.Scheme == "http" {
			port = "80"
		}
		u.Host = net.JoinHostPort(u.Hostname(), port)
	}

	return u.Scheme + "://" + u.Host, nil
}

// Resolver implements core.ConfigResolver on top of Settings.
type Resolver struct {
	settings Settings
	info     ChainInfoSource
}

var _ core.ConfigResolver = (*Resolver)(nil)

// NewResolver returns a Resolver. A nil info source answers with the chain
// and height from settings.
func NewResolver(settings Settings, info ChainInfoSource) *Resolver {
	if info == nil {
		info = StaticChainInfo{Chain: settings.Chain, Height: settings.Height}
	}
	return &Resolver{settings: settings, info: info}
}

// Resolve contacts the chain info source for server and builds the config.
func (r *Resolver) Resolve(ctx context.Context, server string, dangerous bool) (core.WalletConfig, uint64, error) {
	uri, err := ServerOrDefault(server, r.settings.Server)
	if err != nil {
		return core.WalletConfig{}, 0, err
	}

	chain, height, err := r.info.LatestBlock(ctx, uri, dangerous)
	if err != nil {
		return core.WalletConfig{}, 0, fmt.Errorf("fetch chain info from %s: %w", uri, err)
	}

	cfg, err := r.build(chain)
	if err != nil {
		return core.WalletConfig{}, 0, err
	}
	cfg.Server = uri
	cfg.Dangerous = dangerous
	cfg.LatestHeight = height

	return cfg, height, nil
}

// ResolveUnconnected builds a config for chain without network I/O.
func (r *Resolver) ResolveUnconnected(chain string) (core.WalletConfig, error) {
	if chain == "" {
		chain = r.settings.Chain
	}
	cfg, err := r.build(chain)
	if err != nil {
		return core.WalletConfig{}, err
	}
	cfg.Server = r.settings.Server
	return cfg, nil
}

// WalletExists reports whether the wallet file for cfg is present.
func (r *Resolver) WalletExists(cfg core.WalletConfig) bool {
	if cfg.WalletPath == "" {
		return false
	}
	info, err := os.Stat(cfg.WalletPath)
	return err == nil && !info.IsDir()
}

func (r *Resolver) build(chain string) (core.WalletConfig, error) {
	if r.settings.DataDir == "" {
		return core.WalletConfig{}, errors.New("no data directory configured")
	}
	dir, err := ChainDir(r.settings.DataDir, chain)
	if err != nil {
		return core.WalletConfig{}, err
	}
	activation, err := SaplingActivationHeight(chain)
	if err != nil {
		return core.WalletConfig{}, err
	}
	return core.WalletConfig{
		ChainName:         chain,
		DataDir:           dir,
		WalletPath:        filepath.Join(dir, WalletFileName),
		LogPath:           filepath.Join(dir, LogFileName),
		SaplingActivation: activation,
	}, nil
}
