package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/walletbridge/core"
	"github.com/hupe1980/walletbridge/logging"
	"github.com/hupe1980/walletbridge/session"
)

// tracerName identifies spans emitted by this package.
const tracerName = "github.com/hupe1980/walletbridge/engine"

// Config defines tuning parameters for the Engine's operational behavior.
//
// Example:
//
//	cfg := Config{
//	    SerializeCommands: true,
//	}
type Config struct {
	// SerializeCommands runs at most one wallet command at a time. Enable it
	// when the plugged wallet engine is not safe for concurrent RunCommand
	// calls. The command lock is separate from the session lock, so a slow
	// command still never blocks re-initialization.
	SerializeCommands bool
}

// DefaultConfig leaves command execution concurrent. The reference wallet
// in package wallet synchronizes internally.
var DefaultConfig = Config{
	SerializeCommands: false,
}

// Options configures an Engine instance using the functional options pattern.
//
// Resolver and Factory are the two collaborators every deployment must
// provide; the remaining fields have working defaults.
//
// Example:
//
//	eng := New(func(o *Options) {
//	    o.Resolver = config.NewResolver(settings, config.StaticChainInfo{Chain: "main", Height: 2_000_000})
//	    o.Factory = wallet.NewFactory()
//	    o.Logger = logger
//	})
type Options struct {
	// Config contains operational parameters for the engine behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// Resolver turns server URIs and chain names into wallet configs.
	Resolver core.ConfigResolver

	// Factory constructs wallet engines.
	Factory core.EngineFactory

	// Slot holds the active session. Defaults to a fresh, empty slot.
	Slot *session.Slot

	// Callbacks are executed around commands and installations.
	// Defaults to an empty manager.
	Callbacks *CallbackManager

	// Logger provides structured logging for debugging and monitoring.
	// Defaults to NoOp logger if nil to ensure no logging dependencies.
	Logger logging.Logger

	// TracerProvider supplies the tracer used for spans. Defaults to the
	// global provider.
	TracerProvider trace.TracerProvider
}

// Engine owns the single active wallet session and dispatches commands to it.
//
// Core Responsibilities:
//   - Lifecycle: resolve configuration, construct the wallet through the
//     factory, install it into the session slot
//   - Dispatch: forward named commands to whichever wallet is active at call time
//   - Observability: structured logging, tracing spans and callbacks
//
// Concurrency Model:
//   - The session slot lock is held only for read-and-acquire or swap
//   - Each command acquires its own reference to the active handle, so a
//     concurrent initialization never invalidates a command in flight
//   - Equivalent lifecycle calls racing each other resolve last-write-wins
//   - Optional command serialization via Config.SerializeCommands
//
// Error Handling:
//   - Lifecycle failures are *core.LifecycleError values and never modify the slot
//   - Dispatch before initialization returns core.ErrNotInitialized
//   - Engine-level command failures are carried in the response text untouched
type Engine struct {
	resolver  core.ConfigResolver
	factory   core.EngineFactory
	slot      *session.Slot
	callbacks *CallbackManager
	logger    logging.Logger
	tracer    trace.Tracer

	config Config

	// cmdMu serializes RunCommand when Config.SerializeCommands is set.
	cmdMu sync.Mutex
}

var _ core.Bridge = (*Engine)(nil)

// New creates a new Engine instance with sensible defaults and optional configuration.
//
// Default Services:
//   - Slot: a fresh empty session slot
//   - Callbacks: no callbacks registered
//   - Logger: No-op logger that discards all messages
//   - TracerProvider: otel global provider
//
// Resolver and Factory have no defaults; lifecycle operations on an engine
// lacking them fail with a configuration error rather than panicking.
//
// Examples:
//
//	// Production setup
//	eng := New(func(o *Options) {
//	    o.Resolver = resolver
//	    o.Factory = wallet.NewFactory(func(o *wallet.Options) { o.Logger = logger })
//	    o.Logger = logger
//	})
//
//	// Non-reentrant wallet backend
//	eng := New(func(o *Options) {
//	    o.Resolver = resolver
//	    o.Factory = legacyFactory
//	    o.Config.SerializeCommands = true
//	})
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Slot == nil {
		opts.Slot = session.NewSlot()
	}
	if opts.Callbacks == nil {
		opts.Callbacks = NewCallbackManager()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	e := &Engine{
		resolver:  opts.Resolver,
		factory:   opts.Factory,
		slot:      opts.Slot,
		callbacks: opts.Callbacks,
		logger:    opts.Logger,
		tracer:    opts.TracerProvider.Tracer(tracerName),
		config:    opts.Config,
	}

	if e.slot.OnRelease == nil {
		e.slot.OnRelease = e.onRelease
	}

	return e
}

// Slot exposes the session slot for introspection.
func (e *Engine) Slot() *session.Slot { return e.slot }

// State reports the lifecycle state of the active session.
func (e *Engine) State() core.State { return e.slot.State() }

// Close empties the session slot. The active wallet is closed once commands
// still holding it finish. Later commands see core.ErrNotInitialized until
// the next initialization.
func (e *Engine) Close() error {
	e.slot.Set(nil)
	return nil
}

// WalletExists reports whether persisted wallet data exists for chain.
//
// This is a pure query: it resolves an unconnected configuration and asks
// the resolver whether the wallet location is populated. The session slot is
// never consulted or modified.
func (e *Engine) WalletExists(chain string) (bool, error) {
	if e.resolver == nil {
		return false, core.NewLifecycleError(core.OpExists, core.StageConfig, errors.New("no config resolver configured"))
	}

	cfg, err := e.resolver.ResolveUnconnected(chain)
	if err != nil {
		return false, core.NewLifecycleError(core.OpExists, core.StageConfig, err)
	}

	exists := e.resolver.WalletExists(cfg)
	e.logger.Debug("wallet existence checked", "chain", chain, "exists", exists)

	return exists, nil
}

// InitializeNew creates a brand-new wallet and installs it as the active session.
//
// Steps:
//  1. Resolve configuration for server (learning the latest block height)
//  2. Ask the factory for a new wallet with a freshly generated secret
//  3. Initialize the wallet's diagnostics (best-effort)
//  4. Read the seed so the caller can present it for backup
//  5. Install the handle into the session slot
//
// A failure at steps 1, 2 or 4 returns a *core.LifecycleError and leaves the
// session slot exactly as it was. A wallet constructed before a step-4
// failure is released, never installed.
//
// Example:
//
//	seed, err := eng.InitializeNew(ctx, false, "https://lightwalletd.example:443")
//	if err != nil {
//	    return err
//	}
//	fmt.Println("write this down:", seed.Phrase)
func (e *Engine) InitializeNew(ctx context.Context, dangerous bool, server string) (core.Seed, error) {
	var seed core.Seed

	err := e.initialize(ctx, core.OpCreate, dangerous, server, func(ctx context.Context, cfg core.WalletConfig, height uint64) (core.WalletEngine, error) {
		return e.factory.CreateNew(ctx, cfg, height)
	}, func(w core.WalletEngine) error {
		s, err := w.SeedPhrase()
		if err != nil {
			return err
		}
		seed = s
		return nil
	})
	if err != nil {
		return core.Seed{}, err
	}

	return seed, nil
}

// InitializeFromPhrase restores a wallet from seed material and installs it.
//
// The birthday is the approximate height the seed was created at; the
// factory uses it to bound how much history to reconstruct. Restoration is
// deterministic: the same seed, birthday and configuration produce wallets
// that behave identically through the command interface.
func (e *Engine) InitializeFromPhrase(ctx context.Context, dangerous bool, server, seed string, birthday uint64) error {
	return e.initialize(ctx, core.OpRestore, dangerous, server, func(ctx context.Context, cfg core.WalletConfig, _ uint64) (core.WalletEngine, error) {
		return e.factory.Restore(ctx, seed, cfg, birthday)
	}, nil)
}

// InitializeExisting loads a previously persisted wallet and installs it.
func (e *Engine) InitializeExisting(ctx context.Context, dangerous bool, server string) error {
	return e.initialize(ctx, core.OpLoad, dangerous, server, func(ctx context.Context, cfg core.WalletConfig, _ uint64) (core.WalletEngine, error) {
		return e.factory.Load(ctx, cfg)
	}, nil)
}

type constructFunc func(ctx context.Context, cfg core.WalletConfig, height uint64) (core.WalletEngine, error)

// initialize runs the shared lifecycle pipeline. finish runs after
// diagnostics and before installation; its failure aborts with StageSeed.
func (e *Engine) initialize(
	ctx context.Context,
	op core.Operation,
	dangerous bool,
	server string,
	construct constructFunc,
	finish func(core.WalletEngine) error,
) (err error) {
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "walletbridge."+string(op), trace.WithAttributes(
		attribute.String("wallet.operation", string(op)),
		attribute.String("wallet.server", server),
		attribute.Bool("wallet.dangerous", dangerous),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.notifyError(ctx, op, "", err)
		}
		span.End()
		if l, ok := e.logger.(*logging.BridgeLogger); ok {
			l.LogLifecycle(string(op), time.Since(start), err == nil, err)
		} else if err != nil {
			e.logger.Error("wallet initialization failed", "operation", op, "error", err)
		}
	}()

	if e.resolver == nil || e.factory == nil {
		return core.NewLifecycleError(op, core.StageConfig, errors.New("engine is missing its resolver or factory"))
	}

	cfg, height, err := e.resolver.Resolve(ctx, server, dangerous)
	if err != nil {
		return core.NewLifecycleError(op, core.StageConfig, err)
	}
	span.SetAttributes(attribute.String("wallet.chain", cfg.ChainName), attribute.Int64("wallet.latest_height", int64(height)))

	w, err := construct(ctx, cfg, height)
	if err != nil {
		return core.NewLifecycleError(op, core.StageConstruct, err)
	}
	if w == nil {
		return core.NewLifecycleError(op, core.StageConstruct, errors.New("factory returned no wallet"))
	}

	h := session.NewHandle(w, core.StateFor(op), cfg)

	// Diagnostics are best-effort; a failure is logged and otherwise ignored.
	if derr := w.InitDiagnostics(); derr != nil {
		e.logger.Warn("wallet diagnostics unavailable", "handle_id", h.ID(), "error", derr)
	}

	if finish != nil {
		if ferr := finish(w); ferr != nil {
			if rerr := h.Release(); rerr != nil {
				e.logger.Warn("closing abandoned wallet failed", "handle_id", h.ID(), "error", rerr)
			}
			return core.NewLifecycleError(op, core.StageSeed, ferr)
		}
	}

	e.slot.Set(h)
	span.SetAttributes(attribute.String("wallet.handle_id", h.ID()))
	e.logger.Info("wallet session installed", "handle_id", h.ID(), "state", h.State().String(), "chain", cfg.ChainName)

	if cerr := e.callbacks.ExecuteCallbacks(ctx, CallbackOnInstall, &CallbackContext{
		Operation: op,
		HandleID:  h.ID(),
		State:     h.State(),
	}); cerr != nil {
		// The wallet is already installed; a failing hook cannot undo that.
		e.logger.Warn("install callback failed", "handle_id", h.ID(), "error", cerr)
	}

	return nil
}

// Execute runs one named command against the active wallet.
//
// Contract:
//  1. Acquire the current handle; when the slot is empty return
//     core.ErrNotInitialized without calling any collaborator
//  2. Build the argument list: empty for an empty argument, otherwise a
//     single element holding the raw argument string
//  3. Forward to the wallet and return its response verbatim
//
// The handle reference is held for the whole call, so a concurrent
// re-initialization swaps the slot without disturbing this command; the
// replaced wallet is closed once the command finishes.
//
// Command names are not validated. Unknown commands reach the wallet, which
// defines the response.
//
// Example:
//
//	resp, err := eng.Execute(ctx, "balance", "")
//	if errors.Is(err, core.ErrNotInitialized) {
//	    // initialize first
//	}
func (e *Engine) Execute(ctx context.Context, command, argument string) (resp string, err error) {
	h, ok := e.slot.Current()
	if !ok {
		return "", core.ErrNotInitialized
	}
	defer func() {
		if rerr := h.Release(); rerr != nil {
			e.logger.Warn("closing replaced wallet failed", "handle_id", h.ID(), "error", rerr)
		}
	}()

	var args []string
	if argument != "" {
		args = []string{argument}
	}

	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "walletbridge.execute", trace.WithAttributes(
		attribute.String("wallet.command", command),
		attribute.String("wallet.handle_id", h.ID()),
		attribute.Int("wallet.arg_count", len(args)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.notifyError(ctx, core.OpDispatch, h.ID(), err)
		}
		span.End()
		e.logCommand(h, command, time.Since(start), err)
	}()

	cbCtx := &CallbackContext{
		Operation: core.OpDispatch,
		HandleID:  h.ID(),
		State:     h.State(),
		Command:   command,
		Args:      args,
	}
	if err := e.callbacks.ExecuteCallbacks(ctx, CallbackBeforeCommand, cbCtx); err != nil {
		return "", fmt.Errorf("before command callback: %w", err)
	}

	resp = e.runCommand(ctx, h, command, args)

	cbCtx.Response = resp
	if err := e.callbacks.ExecuteCallbacks(ctx, CallbackAfterCommand, cbCtx); err != nil {
		e.logger.Warn("after command callback failed", "command", command, "error", err)
	}

	return resp, nil
}

// logCommand records a dispatched command on the engine's logger. A
// *logging.BridgeLogger gets its structured command record; any other Logger
// gets the same fields as key-value pairs.
func (e *Engine) logCommand(h *session.Handle, command string, dur time.Duration, err error) {
	chain := h.Config().ChainName
	if l, ok := e.logger.(*logging.BridgeLogger); ok {
		l.WithHandle(h.ID(), chain).LogCommand(command, dur, err == nil, err)
		return
	}

	kv := []any{"command", command, "handle_id", h.ID(), "chain", chain, "duration", dur}
	if err != nil {
		e.logger.Warn("command execution failed", append(kv, "error", err)...)
		return
	}
	e.logger.Debug("command execution completed", kv...)
}

func (e *Engine) runCommand(ctx context.Context, h *session.Handle, command string, args []string) string {
	if e.config.SerializeCommands {
		e.cmdMu.Lock()
		defer e.cmdMu.Unlock()
	}
	return h.Engine().RunCommand(ctx, command, args)
}

func (e *Engine) notifyError(ctx context.Context, op core.Operation, handleID string, err error) {
	if cerr := e.callbacks.ExecuteCallbacks(ctx, CallbackOnError, &CallbackContext{
		Operation: op,
		HandleID:  handleID,
		Err:       err,
	}); cerr != nil {
		e.logger.Warn("error callback failed", "operation", op, "error", cerr)
	}
}

func (e *Engine) onRelease(h *session.Handle, err error) {
	if err != nil {
		e.logger.Warn("closing replaced wallet failed", "handle_id", h.ID(), "error", err)
		return
	}
	e.logger.Debug("replaced wallet released", "handle_id", h.ID())
}
