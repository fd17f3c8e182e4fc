package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerOrDefault(t *testing.T) {
	tests := []struct {
		in       string
		fallback string
		want     string
	}{
		{"", "", DefaultServer},
		{"", "https://fallback.example:9067", "https://fallback.example:9067"},
		{"node.example", "", "https://node.example:443"},
		{"http://node.example", "", "http://node.example:80"},
		{"https://node.example:9067/", "", "https://node.example:9067"},
		{"  https://node.example:1443  ", "", "https://node.example:1443"},
	}
	for _, tt := range tests {
		got, err := ServerOrDefault(tt.in, tt.fallback)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"ftp://node.example", "https://", "https://bad host"} {
		_, err := ServerOrDefault(bad, "")
		assert.Error(t, err, bad)
	}
}

func TestChainHelpers(t *testing.T) {
	h, err := SaplingActivationHeight(ChainMain)
	require.NoError(t, err)
	assert.Equal(t, uint64(419200), h)

	h, err = SaplingActivationHeight(ChainTest)
	require.NoError(t, err)
	assert.Equal(t, uint64(280000), h)

	_, err = SaplingActivationHeight("moon")
	assert.Error(t, err)

	dir, err := ChainDir("/data", ChainTest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "testnet3"), dir)
}

func TestResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	r := NewResolver(Settings{DataDir: root, Chain: ChainMain}, StaticChainInfo{Chain: ChainTest, Height: 1_234_567})

	cfg, height, err := r.Resolve(context.Background(), "node.example:9067", true)
	require.NoError(t, err)

	assert.Equal(t, uint64(1_234_567), height)
	assert.Equal(t, height, cfg.LatestHeight)
	assert.Equal(t, "https://node.example:9067", cfg.Server)
	assert.Equal(t, ChainTest, cfg.ChainName)
	assert.True(t, cfg.Dangerous)
	assert.Equal(t, filepath.Join(root, "testnet3"), cfg.DataDir)
	assert.Equal(t, filepath.Join(root, "testnet3", WalletFileName), cfg.WalletPath)
	assert.Equal(t, uint64(280000), cfg.SaplingActivation)
}

func TestResolver_ResolveErrors(t *testing.T) {
	r := NewResolver(Settings{DataDir: t.TempDir()}, ChainInfoFunc(func(context.Context, string, bool) (string, uint64, error) {
		return "", 0, errors.New("connection refused")
	}))

	_, _, err := r.Resolve(context.Background(), "", false)
	assert.ErrorContains(t, err, "connection refused")

	_, _, err = r.Resolve(context.Background(), "ftp://x", false)
	assert.Error(t, err)

	r = NewResolver(Settings{DataDir: t.TempDir()}, StaticChainInfo{Chain: "moon"})
	_, _, err = r.Resolve(context.Background(), "", false)
	assert.ErrorContains(t, err, "unknown chain")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r = NewResolver(Settings{DataDir: t.TempDir()}, StaticChainInfo{Chain: ChainMain})
	_, _, err = r.Resolve(ctx, "", false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolver_WalletExists(t *testing.T) {
	root := t.TempDir()
	r := NewResolver(Settings{DataDir: root, Chain: ChainMain, Height: 5}, nil)

	cfg, err := r.ResolveUnconnected(ChainRegtest)
	require.NoError(t, err)
	assert.False(t, r.WalletExists(cfg))

	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o700))
	require.NoError(t, os.WriteFile(cfg.WalletPath, []byte("x"), 0o600))
	assert.True(t, r.WalletExists(cfg))

	other, err := r.ResolveUnconnected("")
	require.NoError(t, err)
	assert.Equal(t, ChainMain, other.ChainName)
	assert.False(t, r.WalletExists(other))

	_, err = r.ResolveUnconnected("moon")
	assert.Error(t, err)
}
