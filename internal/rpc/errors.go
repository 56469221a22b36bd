package rpc

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady matches every NotReadyError via errors.Is.
	ErrNotReady = errors.New("store not ready")

	// ErrTransport matches every TransportError via errors.Is.
	ErrTransport = errors.New("store transport fault")

	// ErrInitTimeout is the cause of an InitializationError raised when the
	// handshake does not complete in time.
	ErrInitTimeout = errors.New("store initialization timed out")

	// ErrClosed is the cause recorded when the proxy is closed by its owner.
	ErrClosed = errors.New("store connection closed")
)

// InitializationError reports a failed handshake: the Store Owner could not
// be spawned, signalled control-error, faulted, or did not answer in time.
type InitializationError struct {
	// Message is the Store Owner's reported reason, if it sent one.
	Message string
	Cause   error
}

func (e *InitializationError) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("initialize store: %s: %v", e.Message, e.Cause)
	case e.Message != "":
		return "initialize store: " + e.Message
	case e.Cause != nil:
		return fmt.Sprintf("initialize store: %v", e.Cause)
	default:
		return "initialize store: failed"
	}
}

func (e *InitializationError) Unwrap() error {
	return e.Cause
}

// NotReadyError is returned by operations attempted while the gate is not
// Ready. No message reaches the Store Owner.
type NotReadyError struct {
	State GateState
	// Cause is the gate's failure, when State is Failed.
	Cause error
}

func (e *NotReadyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("store not ready (%s): %v", e.State, e.Cause)
	}
	return fmt.Sprintf("store not ready (%s)", e.State)
}

func (e *NotReadyError) Is(target error) bool {
	return target == ErrNotReady
}

func (e *NotReadyError) Unwrap() error {
	return e.Cause
}

// TransportError rejects a request that was pending when the connection to
// the Store Owner failed as a whole.
type TransportError struct {
	ID    RequestID
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s: store transport fault: %v", e.ID, e.Cause)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ExecutionError reports that a single statement failed. The connection and
// every other pending request are unaffected.
type ExecutionError struct {
	ID        RequestID
	Action    Action
	Statement string
	// Message is the error text reported by the store.
	Message string
}

func (e *ExecutionError) Error() string {
	if e.Statement != "" {
		return fmt.Sprintf("request %s: %s %q: %s", e.ID, e.Action, e.Statement, e.Message)
	}
	return fmt.Sprintf("request %s: %s: %s", e.ID, e.Action, e.Message)
}

// IsExecutionError reports whether err is or wraps an ExecutionError.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

// IsInitializationError reports whether err is or wraps an InitializationError.
func IsInitializationError(err error) bool {
	var ie *InitializationError
	return errors.As(err, &ie)
}
