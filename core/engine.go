package core

import "context"

// Bridge coordinates the single active wallet session and command dispatch.
//
// A concrete implementation is responsible for:
//   - Resolving configuration and constructing engines via its collaborators
//   - Installing the constructed engine as the active session
//   - Dispatching named commands to whichever engine is active at call time
//
// Implementations SHOULD:
//   - Never install a partially constructed engine
//   - Never hold the session lock while a command is executing
//   - Keep an engine alive for the duration of any in-flight command, even if
//     a concurrent initialization replaces it
type Bridge interface {
	// WalletExists reports whether persisted wallet data exists for chain.
	// It never touches the active session.
	WalletExists(chain string) (bool, error)

	// InitializeNew creates a fresh wallet and returns its seed for backup.
	InitializeNew(ctx context.Context, dangerous bool, server string) (Seed, error)

	// InitializeFromPhrase restores a wallet from seed material and birthday.
	InitializeFromPhrase(ctx context.Context, dangerous bool, server, seed string, birthday uint64) error

	// InitializeExisting loads a previously persisted wallet.
	InitializeExisting(ctx context.Context, dangerous bool, server string) error

	// Execute runs a named command against the active wallet. It returns
	// ErrNotInitialized when no wallet is active. The response text is the
	// engine's own and may encode engine-level failures.
	Execute(ctx context.Context, command, argument string) (string, error)
}
