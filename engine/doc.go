// Package engine implements the session and dispatch layer of walletbridge.
//
// The Engine owns exactly one wallet instance at a time and mediates its
// lifecycle: absent, created-new, restored-from-seed or loaded-from-disk.
// Once a wallet is installed, arbitrary named commands can be dispatched to
// it without the caller managing concurrency or instance identity.
//
// # Core Responsibilities
//
// Lifecycle:
//   - Existence check against the persisted wallet location (pure query)
//   - Create-new, restore-from-seed and load-existing initializations
//   - Configuration resolution and construction through pluggable collaborators
//   - Best-effort diagnostics initialization of the constructed wallet
//
// Dispatch:
//   - Forwarding (command, argument) pairs to the active wallet
//   - A well-defined core.ErrNotInitialized before any initialization
//   - Verbatim pass-through of the wallet's response text
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────┐
//	│              Host boundary (package walletbridge)       │
//	├─────────────────────────────────────────────────────────┤
//	│                     Engine                              │
//	│  ┌──────────────┐ ┌─────────────┐ ┌─────────────────┐   │
//	│  │  Lifecycle   │ │   Execute   │ │   Callbacks     │   │
//	│  └──────────────┘ └─────────────┘ └─────────────────┘   │
//	├─────────────────────────────────────────────────────────┤
//	│                 session.Slot (one Handle)               │
//	├─────────────────────────────────────────────────────────┤
//	│   core.ConfigResolver   │   core.EngineFactory          │
//	│                         │   core.WalletEngine           │
//	└─────────────────────────────────────────────────────────┘
//
// # Concurrency
//
// The slot lock guards only the handle pointer. A command acquires its own
// reference to the handle before the lock is released and drops it when the
// wallet responds, so:
//
//   - a slow command never blocks initialization or other commands
//   - an initialization never invalidates a command already in flight
//   - a replaced wallet is closed as soon as its last command finishes
//
// Concurrent initializations are not reconciled; the last installation wins.
// Commands are not serialized unless Config.SerializeCommands is set.
//
// # Errors
//
// Lifecycle failures are returned as *core.LifecycleError, tagged with the
// failing stage (config, construct, seed). The active session is never
// modified by a failed initialization. Engine-level command failures are
// not errors at this layer; they travel inside the response text.
//
// # Observability
//
// Every lifecycle operation and command runs inside an OpenTelemetry span
// and is logged through logging.Logger. Callbacks (see CallbackManager) hook
// before and after commands, on installation and on errors.
//
// # Usage
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Resolver = resolver
//	    o.Factory = wallet.NewFactory()
//	})
//
//	if err := eng.InitializeExisting(ctx, false, ""); err != nil {
//	    return err
//	}
//
//	resp, err := eng.Execute(ctx, "balance", "")
package engine
