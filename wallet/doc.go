// Package wallet provides the reference wallet engine used by walletbridge.
//
// The engine keeps one wallet per data directory in a SQLite file: its seed
// (optionally sealed under a password), birthday, scan progress and derived
// addresses. Seed phrases are 24-word BIP39 mnemonics with a checksum.
// Addresses are derived deterministically from the seed, so restoring the
// same phrase reproduces the same wallet.
//
// The engine does not talk to a light-wallet server. Chain heights come from
// the resolved configuration and balances are always zero; it exists to give
// the bridge a real, persistent collaborator with the full command surface.
package wallet
