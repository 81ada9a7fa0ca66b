package projecttools

import "github.com/wagiedev/project-tools-mcp/internal/errors"

// Re-export error types from internal package

// ToolsError is the marker interface implemented by all typed errors.
type ToolsError = errors.ToolsError

// UnknownOperationError indicates no operation is registered under a name.
type UnknownOperationError = errors.UnknownOperationError

// RegistrationError indicates an operation could not be registered.
type RegistrationError = errors.RegistrationError

// ValidationError indicates arguments did not satisfy an input schema.
type ValidationError = errors.ValidationError

// InvocationError indicates an operation handler failed or panicked.
type InvocationError = errors.InvocationError

// ConfigError indicates a configuration key holds an unusable value.
type ConfigError = errors.ConfigError

// Re-export sentinel errors from internal package.
var (
	// ErrUnknownOperation indicates no operation is registered under a name.
	ErrUnknownOperation = errors.ErrUnknownOperation

	// ErrDuplicateOperation indicates an operation name is already registered.
	ErrDuplicateOperation = errors.ErrDuplicateOperation

	// ErrRegistrySealed indicates the registry no longer accepts registrations.
	ErrRegistrySealed = errors.ErrRegistrySealed

	// ErrInvalidDescriptor indicates an operation descriptor is incomplete.
	ErrInvalidDescriptor = errors.ErrInvalidDescriptor

	// ErrInvalidArguments indicates arguments failed schema validation.
	ErrInvalidArguments = errors.ErrInvalidArguments

	// ErrHandlerPanic indicates an operation handler panicked.
	ErrHandlerPanic = errors.ErrHandlerPanic

	// ErrSessionClosed indicates a session was used after release.
	ErrSessionClosed = errors.ErrSessionClosed

	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.ErrInvalidConfig
)
