package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ErrorMarker prefixes every failure crossing the string boundary.
	ErrorMarker = "Error: "

	// OKResponse is returned by restore and load on success.
	OKResponse = "OK"
)

// ErrNotInitialized is returned when a command is dispatched before any
// wallet has been installed.
var ErrNotInitialized = errors.New("Light Client is not initialized") //nolint:staticcheck // host-visible text

// Operation names a lifecycle operation.
type Operation string

const (
	OpExists   Operation = "exists"
	OpCreate   Operation = "create"
	OpRestore  Operation = "restore"
	OpLoad     Operation = "load"
	OpDispatch Operation = "execute"
)

// Stage names the step of a lifecycle operation that failed.
type Stage string

const (
	StageConfig    Stage = "config"
	StageConstruct Stage = "construct"
	StageSeed      Stage = "seed"
)

// LifecycleError reports a failed lifecycle operation. The active session is
// never modified when one is returned.
type LifecycleError struct {
	Op    Operation
	Stage Stage
	Err   error
}

func (e *LifecycleError) Error() string { return e.Err.Error() }

// Unwrap returns the collaborator error.
func (e *LifecycleError) Unwrap() error { return e.Err }

// NewLifecycleError wraps err for op at stage.
func NewLifecycleError(op Operation, stage Stage, err error) *LifecycleError {
	return &LifecycleError{Op: op, Stage: stage, Err: err}
}

// FlattenError renders err for the string boundary.
func FlattenError(err error) string {
	return fmt.Sprintf("%s%v", ErrorMarker, err)
}

// IsErrorResponse reports whether a boundary string carries the error marker.
func IsErrorResponse(resp string) bool {
	return strings.HasPrefix(resp, ErrorMarker)
}
