package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ToolsError is the base interface for all errors raised by this module.
type ToolsError interface {
	error
	IsToolsError() bool
}

// Compile-time verification that all error types implement ToolsError.
var (
	_ ToolsError = (*UnknownOperationError)(nil)
	_ ToolsError = (*RegistrationError)(nil)
	_ ToolsError = (*ValidationError)(nil)
	_ ToolsError = (*InvocationError)(nil)
	_ ToolsError = (*ConfigError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrUnknownOperation indicates no operation is registered under a name.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrDuplicateOperation indicates an operation name is already registered.
	ErrDuplicateOperation = errors.New("operation already registered")

	// ErrRegistrySealed indicates the registry no longer accepts registrations.
	ErrRegistrySealed = errors.New("registry sealed")

	// ErrInvalidDescriptor indicates an operation descriptor is incomplete.
	ErrInvalidDescriptor = errors.New("invalid operation descriptor")

	// ErrInvalidArguments indicates tool input failed schema validation.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrHandlerPanic indicates a tool handler panicked during invocation.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrSessionClosed indicates a connection session was already released.
	ErrSessionClosed = errors.New("session closed")

	// ErrInvalidConfig indicates the server configuration is not usable.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UnknownOperationError indicates a dispatch named an unregistered operation.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation: %q", e.Name)
}

func (e *UnknownOperationError) Unwrap() error {
	return ErrUnknownOperation
}

// IsToolsError implements ToolsError.
func (e *UnknownOperationError) IsToolsError() bool { return true }

// RegistrationError indicates an operation could not be registered.
type RegistrationError struct {
	Name string
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register operation %q: %v", e.Name, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// IsToolsError implements ToolsError.
func (e *RegistrationError) IsToolsError() bool { return true }

// ValidationError indicates tool arguments violated the input schema.
// Fields lists the offending argument names in sorted order; it is empty
// when the arguments were not a JSON object at all.
type ValidationError struct {
	Operation string
	Fields    []string
	Err       error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("invalid arguments for %q: %v", e.Operation, e.Err)
	}

	return fmt.Sprintf("invalid arguments for %q: fields [%s]: %v",
		e.Operation, strings.Join(e.Fields, ", "), e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidArguments}
	}

	return []error{ErrInvalidArguments, e.Err}
}

// IsToolsError implements ToolsError.
func (e *ValidationError) IsToolsError() bool { return true }

// InvocationError indicates a handler failed instead of reporting an outcome.
type InvocationError struct {
	Operation string
	Err       error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("operation %q failed: %v", e.Operation, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// IsToolsError implements ToolsError.
func (e *InvocationError) IsToolsError() bool { return true }

// ConfigError indicates a configuration key holds an unusable value.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %q: %s", e.Key, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// IsToolsError implements ToolsError.
func (e *ConfigError) IsToolsError() bool { return true }
