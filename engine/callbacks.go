package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/walletbridge/core"
)

// CallbackType defines the specific lifecycle points where callbacks can be executed.
//
// Available callback types:
//   - BeforeCommand/AfterCommand: around a dispatched wallet command
//   - OnInstall: after a wallet was installed into the session slot
//   - OnError: when a lifecycle operation or dispatch fails
//
// Callbacks are executed synchronously. Only BeforeCommand can influence
// execution flow: its error aborts the command.
type CallbackType string

const (
	// CallbackBeforeCommand is triggered before a command reaches the wallet.
	// Use for auditing, validation or rate limiting.
	CallbackBeforeCommand CallbackType = "before_command"

	// CallbackAfterCommand is triggered after the wallet responded.
	// Use for response inspection or metrics collection.
	CallbackAfterCommand CallbackType = "after_command"

	// CallbackOnInstall is triggered after a wallet became the active session.
	CallbackOnInstall CallbackType = "on_install"

	// CallbackOnError is triggered when a lifecycle operation or dispatch fails.
	CallbackOnError CallbackType = "on_error"
)

// CallbackContext carries the information a callback may inspect.
type CallbackContext struct {
	// Operation is the lifecycle operation or core.OpDispatch for commands.
	Operation core.Operation

	// HandleID identifies the wallet handle involved. Empty when no handle
	// was installed (e.g. a failed initialization).
	HandleID string

	// State is the lifecycle state of the handle.
	State core.State

	// Command and Args are set for command callbacks.
	Command string
	Args    []string

	// Response is set for CallbackAfterCommand.
	Response string

	// Err is set for CallbackOnError.
	Err error

	// Metadata provides extensible storage for custom callback data.
	Metadata map[string]any
}

// Callback defines the interface for execution lifecycle hooks.
//
// Implementations should be fast (they run inline with the operation) and
// must be safe for concurrent use, since commands are dispatched from many
// goroutines.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
//
// Example:
//
//	audit := NewFunctionCallback(
//	    CallbackBeforeCommand,
//	    func(ctx context.Context, cc *CallbackContext) error {
//	        log.Printf("command %s on %s", cc.Command, cc.HandleID)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager is a registry of callbacks keyed by type.
//
// Callbacks are executed in registration order; the first error stops the
// chain. Registration and execution are safe for concurrent use.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates a new, empty callback manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback for its type.
//
// Example:
//
//	manager := NewCallbackManager()
//	manager.RegisterCallback(auditCallback)
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks executes all registered callbacks for the specified type
// and returns the first error.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	cm.mu.RLock()
	callbacks := append([]Callback(nil), cm.callbacks[callbackType]...)
	cm.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return err
		}
	}

	return nil
}

// LoggingCallback forwards a formatted line for each event to a logging function.
//
// Example:
//
//	callback := NewLoggingCallback(CallbackAfterCommand, func(msg string) {
//	    log.Printf("[BRIDGE] %s", msg)
//	})
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the event. Responses are never included since they can hold
// secret material such as a seed phrase.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] op=%s handle=%s", c.callbackType, callbackCtx.Operation, callbackCtx.HandleID)
	if callbackCtx.Command != "" {
		fmt.Fprintf(&b, " command=%s args=%d", callbackCtx.Command, len(callbackCtx.Args))
	}
	if callbackCtx.Err != nil {
		fmt.Fprintf(&b, " error=%v", callbackCtx.Err)
	}
	c.logger(b.String())

	return nil
}

// CommandFilterCallback rejects commands not accepted by allow. Hosts use it
// to restrict which wallet commands a given surface may dispatch.
type CommandFilterCallback struct {
	allow func(command string) bool
}

// NewCommandFilterCallback creates a before-command filter.
func NewCommandFilterCallback(allow func(command string) bool) *CommandFilterCallback {
	return &CommandFilterCallback{allow: allow}
}

// Type returns CallbackBeforeCommand.
func (c *CommandFilterCallback) Type() CallbackType {
	return CallbackBeforeCommand
}

// Execute returns an error when the command is not allowed.
func (c *CommandFilterCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.allow != nil && !c.allow(callbackCtx.Command) {
		return fmt.Errorf("command %q is not allowed", callbackCtx.Command)
	}
	return nil
}
