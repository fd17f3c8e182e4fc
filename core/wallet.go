package core

import "context"

// WalletEngine is a live wallet instance. Implementations must be safe for
// concurrent RunCommand calls unless the bridge is configured to serialize
// commands. An engine that also implements io.Closer is closed once the last
// reference to it is released.
type WalletEngine interface {
	// InitDiagnostics sets up the engine's own diagnostics sink. Failures are
	// reported but callers treat them as best-effort.
	InitDiagnostics() error

	// SeedPhrase returns the human-presentable backup material.
	SeedPhrase() (Seed, error)

	// RunCommand executes a named command with its argument list. The
	// response encodes success or failure per the engine's convention.
	RunCommand(ctx context.Context, name string, args []string) string
}

// EngineFactory constructs wallet engines.
type EngineFactory interface {
	// CreateNew allocates a new engine with a freshly generated secret.
	CreateNew(ctx context.Context, cfg WalletConfig, latestHeight uint64) (WalletEngine, error)

	// Restore reconstructs an engine deterministically from seed material.
	Restore(ctx context.Context, seed string, cfg WalletConfig, birthday uint64) (WalletEngine, error)

	// Load reconstructs an engine from previously persisted state.
	Load(ctx context.Context, cfg WalletConfig) (WalletEngine, error)
}
