// Package logging provides a minimal logging interface and adapters for walletbridge.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the engine, the reference wallet and the CLI use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - BridgeLogger with handle/component context and command/lifecycle helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	eng := engine.New(func(o *engine.Options) { o.Logger = logger })
//
// The interface is kept minimal so hosts can plug any structured logger.
package logging
