// Package core provides the foundational domain types and interfaces used by
// walletbridge. It defines the contracts for:
//
//   - WalletEngine (a live wallet instance accepting named commands)
//   - EngineFactory (construction of engines: new, restored, loaded)
//   - ConfigResolver (turning a server URI or chain name into a WalletConfig)
//   - Bridge (the typed session + dispatch API exposed by the engine package)
//
// Implementation concerns (the session slot, orchestration, persistence) live
// in other packages so that hosts can plug custom wallet backends without
// depending on the reference implementation.
package core
