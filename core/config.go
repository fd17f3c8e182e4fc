package core

import "context"

// WalletConfig is the resolved configuration an engine is constructed with.
type WalletConfig struct {
	Server     string `json:"server"`
	ChainName  string `json:"chain_name"`
	DataDir    string `json:"data_dir"`
	WalletPath string `json:"wallet_path"`
	LogPath    string `json:"log_path"`
	Dangerous  bool   `json:"dangerous"`

	// SaplingActivation is the lowest height a wallet birthday may have.
	SaplingActivation uint64 `json:"sapling_activation"`

	// LatestHeight is the chain tip reported by the server at resolution
	// time. Zero for unconnected configs.
	LatestHeight uint64 `json:"latest_height"`
}

// ConfigResolver turns user-supplied identifiers into a WalletConfig.
type ConfigResolver interface {
	// Resolve connects to server to learn the chain and its latest height.
	// The height is returned and also recorded in WalletConfig.LatestHeight.
	Resolve(ctx context.Context, server string, dangerous bool) (WalletConfig, uint64, error)

	// ResolveUnconnected builds a config for chain without any network I/O.
	ResolveUnconnected(chain string) (WalletConfig, error)

	// WalletExists reports whether persisted wallet data exists for cfg.
	WalletExists(cfg WalletConfig) bool
}
