// Package walletbridge exposes a light wallet through a string-in, string-out
// boundary suitable for foreign hosts such as mobile runtimes.
//
// A Bridge owns one wallet session at a time. Hosts typically:
//  1. Ask WalletExists whether a wallet is persisted for a chain
//  2. Call InitializeExisting, InitializeNewFromPhrase or InitializeNew
//  3. Dispatch commands with Execute
//
// Every result is a plain string. Failures carry the "Error: " prefix (see
// IsError); a successful InitializeNew returns the seed as JSON and the other
// initializations return "OK". Command responses are returned verbatim from
// the wallet.
//
// The package-level functions operate on a process-wide default Bridge that
// is built lazily from default settings. Hosts that need other collaborators
// install their own with SetDefault.
package walletbridge

import (
	"context"
	"sync"

	"github.com/hupe1980/walletbridge/config"
	"github.com/hupe1980/walletbridge/core"
	"github.com/hupe1980/walletbridge/engine"
	"github.com/hupe1980/walletbridge/logging"
	"github.com/hupe1980/walletbridge/wallet"
)

// Options configures a Bridge.
type Options struct {
	// EngineConfig holds engine tuning such as command serialization.
	EngineConfig engine.Config

	// Resolver defaults to a config.Resolver over config.LoadSettings(""),
	// i.e. defaults overridden by WALLETBRIDGE_* environment variables.
	Resolver core.ConfigResolver

	// Factory defaults to the SQLite-backed wallet.Factory.
	Factory core.EngineFactory

	// Callbacks are forwarded to the engine.
	Callbacks *engine.CallbackManager

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Bridge is the host-facing façade over engine.Engine.
type Bridge struct {
	engine *engine.Engine
	logger logging.Logger
}

// New creates a Bridge. Unset collaborators are replaced by the reference
// implementations.
func New(optFns ...func(o *Options)) *Bridge {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Resolver == nil {
		opts.Resolver = config.NewResolver(environmentSettings(opts.Logger), nil)
	}
	if opts.Factory == nil {
		opts.Factory = wallet.NewFactory(func(o *wallet.Options) { o.Logger = opts.Logger })
	}

	e := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Resolver = opts.Resolver
		o.Factory = opts.Factory
		o.Callbacks = opts.Callbacks
		o.Logger = opts.Logger
	})

	return &Bridge{engine: e, logger: opts.Logger}
}

// environmentSettings loads settings from the environment, falling back to
// the defaults when the environment is invalid.
func environmentSettings(logger logging.Logger) config.Settings {
	settings, err := config.LoadSettings("")
	if err != nil {
		logger.Warn("invalid environment settings, using defaults", "error", err)
		return config.DefaultSettings()
	}
	return settings
}

// Engine returns the underlying engine for callers that want typed errors.
func (b *Bridge) Engine() *engine.Engine { return b.engine }

// WalletExists reports whether a wallet is persisted for chain. An
// unresolvable chain reports false.
func (b *Bridge) WalletExists(chain string) bool {
	exists, err := b.engine.WalletExists(chain)
	if err != nil {
		b.logger.Warn("wallet existence check failed", "chain", chain, "error", err)
		return false
	}
	return exists
}

// InitializeNew creates a wallet and returns its seed as
// {"seed":"<phrase>","birthday":<height>}.
func (b *Bridge) InitializeNew(dangerous bool, serverURI string) string {
	seed, err := b.engine.InitializeNew(context.Background(), dangerous, serverURI)
	if err != nil {
		return core.FlattenError(err)
	}
	return seed.Dump()
}

// InitializeNewFromPhrase restores a wallet from seed and returns "OK".
func (b *Bridge) InitializeNewFromPhrase(dangerous bool, serverURI, seed string, birthday uint64) string {
	if err := b.engine.InitializeFromPhrase(context.Background(), dangerous, serverURI, seed, birthday); err != nil {
		return core.FlattenError(err)
	}
	return core.OKResponse
}

// InitializeExisting loads the persisted wallet and returns "OK".
func (b *Bridge) InitializeExisting(dangerous bool, serverURI string) string {
	if err := b.engine.InitializeExisting(context.Background(), dangerous, serverURI); err != nil {
		return core.FlattenError(err)
	}
	return core.OKResponse
}

// Execute dispatches cmd with its raw argument string to the active wallet.
func (b *Bridge) Execute(cmd, args string) string {
	resp, err := b.engine.Execute(context.Background(), cmd, args)
	if err != nil {
		return core.FlattenError(err)
	}
	return resp
}

// Close releases the active wallet session.
func (b *Bridge) Close() error { return b.engine.Close() }

// IsError reports whether a boundary result signals a failure.
func IsError(result string) bool {
	return core.IsErrorResponse(result)
}

var (
	defaultMu     sync.Mutex
	defaultBridge *Bridge
)

// Default returns the process-wide Bridge, creating it on first use.
func Default() *Bridge {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultBridge == nil {
		defaultBridge = New()
	}
	return defaultBridge
}

// SetDefault replaces the process-wide Bridge. The previous bridge keeps
// serving commands already in flight.
func SetDefault(b *Bridge) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultBridge = b
}

// WalletExists calls Default().WalletExists.
func WalletExists(chain string) bool { return Default().WalletExists(chain) }

// InitializeNew calls Default().InitializeNew.
func InitializeNew(dangerous bool, serverURI string) string {
	return Default().InitializeNew(dangerous, serverURI)
}

// InitializeNewFromPhrase calls Default().InitializeNewFromPhrase.
func InitializeNewFromPhrase(dangerous bool, serverURI, seed string, birthday uint64) string {
	return Default().InitializeNewFromPhrase(dangerous, serverURI, seed, birthday)
}

// InitializeExisting calls Default().InitializeExisting.
func InitializeExisting(dangerous bool, serverURI string) string {
	return Default().InitializeExisting(dangerous, serverURI)
}

// Execute calls Default().Execute.
func Execute(cmd, args string) string { return Default().Execute(cmd, args) }
