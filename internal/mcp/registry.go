package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	toolserrors "github.com/wagiedev/project-tools-mcp/internal/errors"
)

// Outcome classifies a dispatch for observers.
type Outcome string

const (
	// OutcomeOK means the handler ran and returned a clean payload.
	OutcomeOK Outcome = "ok"
	// OutcomeReported means the handler ran and reported an error in its payload.
	OutcomeReported Outcome = "reported"
	// OutcomeUnknown means no operation matched the requested name.
	OutcomeUnknown Outcome = "unknown"
	// OutcomeInvalid means the arguments failed schema validation.
	OutcomeInvalid Outcome = "invalid"
	// OutcomeError means the handler failed or panicked.
	OutcomeError Outcome = "error"
)

// Observer receives one notification per dispatch.
type Observer interface {
	ObserveDispatch(operation string, outcome Outcome, elapsed time.Duration)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithObserver attaches an Observer to the registry.
func WithObserver(o Observer) RegistryOption {
	return func(r *Registry) {
		r.observer = o
	}
}

// Registry maps operation names to descriptors and dispatches calls.
//
// Registration happens at startup. After Seal the registry is read-only and
// safe to share between any number of connections.
type Registry struct {
	log      *slog.Logger
	observer Observer

	mu     sync.RWMutex
	sealed bool
	tools  map[string]*entry
	order  []string
}

// entry holds a descriptor and its compiled validator.
type entry struct {
	desc      *Descriptor
	validator *validator
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		log:   log.With("component", "registry"),
		tools: make(map[string]*entry, 8),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds an operation. It fails if the name is already taken, the
// registry is sealed, or the descriptor is incomplete.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil {
		return &toolserrors.RegistrationError{Err: toolserrors.ErrInvalidDescriptor}
	}

	if err := checkDescriptor(d); err != nil {
		return &toolserrors.RegistrationError{Name: d.Name, Err: err}
	}

	v, err := newValidator(d)
	if err != nil {
		return &toolserrors.RegistrationError{
			Name: d.Name,
			Err:  fmt.Errorf("%w: %w", toolserrors.ErrInvalidDescriptor, err),
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return &toolserrors.RegistrationError{Name: d.Name, Err: toolserrors.ErrRegistrySealed}
	}

	if _, exists := r.tools[d.Name]; exists {
		return &toolserrors.RegistrationError{Name: d.Name, Err: toolserrors.ErrDuplicateOperation}
	}

	r.tools[d.Name] = &entry{desc: d, validator: v}
	r.order = append(r.order, d.Name)

	r.log.Debug("Registered operation", "operation", d.Name)

	return nil
}

func checkDescriptor(d *Descriptor) error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: empty name", toolserrors.ErrInvalidDescriptor)
	case d.Handler == nil:
		return fmt.Errorf("%w: nil handler", toolserrors.ErrInvalidDescriptor)
	case d.InputSchema == nil || d.InputSchema.Type != "object":
		return fmt.Errorf("%w: input schema must have type object", toolserrors.ErrInvalidDescriptor)
	}

	return nil
}

// Seal stops further registrations.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sealed
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	if !ok {
		return nil, false
	}

	return e.desc, true
}

// List returns all descriptors in registration order.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name].desc)
	}

	return result
}

// Manifest returns metadata for all registered operations as plain maps,
// suitable for printing or embedding in other documents.
func (r *Registry) Manifest() []map[string]any {
	descs := r.List()

	result := make([]map[string]any, 0, len(descs))
	for _, d := range descs {
		toolMap := map[string]any{
			"name":        d.Name,
			"title":       d.Title,
			"description": d.Description,
		}

		if m := manifestField(r.log, d.Name, "inputSchema", d.InputSchema); m != nil {
			toolMap["inputSchema"] = m
		}

		if m := manifestField(r.log, d.Name, "outputSchema", d.OutputSchema); m != nil {
			toolMap["outputSchema"] = m
		}

		if m := manifestField(r.log, d.Name, "annotations", d.Annotations); m != nil {
			toolMap["annotations"] = m
		}

		result = append(result, toolMap)
	}

	return result
}

// manifestField converts one descriptor field for Manifest. Fields that
// cannot be encoded are left out and logged.
func manifestField[T any](log *slog.Logger, operation, field string, v *T) map[string]any {
	if v == nil {
		return nil
	}

	m, err := toMap(v)
	if err != nil {
		log.Debug("Manifest field dropped", "operation", operation, "field", field, "error", err)

		return nil
	}

	return m
}

// toMap round-trips v through JSON.
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return m, nil
}

// Dispatch validates args against the named operation's input schema, runs
// its handler and wraps the payload in a Result.
//
// Errors are dispatch-layer failures: *UnknownOperationError,
// *ValidationError or *InvocationError. A handler that reports a problem in
// its payload yields a Result, not an error.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (*Result, error) {
	start := time.Now()

	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		r.observe(name, OutcomeUnknown, start)

		return nil, &toolserrors.UnknownOperationError{Name: name}
	}

	normalized, err := e.validator.validate(args)
	if err != nil {
		r.observe(name, OutcomeInvalid, start)

		return nil, err
	}

	payload, err := e.invoke(ctx, normalized)
	if err != nil {
		r.observe(name, OutcomeError, start)

		return nil, &toolserrors.InvocationError{Operation: name, Err: err}
	}

	res, err := NewResult(payload)
	if err != nil {
		r.observe(name, OutcomeError, start)

		return nil, &toolserrors.InvocationError{Operation: name, Err: err}
	}

	outcome := OutcomeOK
	if res.Failed() {
		outcome = OutcomeReported
		r.log.Info("Operation reported a failure", "operation", name, "reason", res.Reported)
	}

	r.observe(name, outcome, start)
	r.log.Debug("Dispatched operation",
		"operation", name,
		"outcome", outcome,
		"elapsed", time.Since(start),
	)

	return res, nil
}

// invoke runs the handler, converting a panic into an error.
func (e *entry) invoke(ctx context.Context, args json.RawMessage) (payload any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			payload = nil
			err = fmt.Errorf("%w: %v", toolserrors.ErrHandlerPanic, rec)
		}
	}()

	return e.desc.Handler(ctx, args)
}

func (r *Registry) observe(name string, outcome Outcome, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDispatch(name, outcome, time.Since(start))
	}
}

// Install registers every operation with an SDK server. Each installed
// handler routes through Dispatch; dispatch-layer failures are returned to
// the SDK as errors, which it reports as JSON-RPC errors.
func (r *Registry) Install(server *mcp.Server) {
	server.AddReceivingMiddleware(r.unknownOperations)

	for _, d := range r.List() {
		name := d.Name

		server.AddTool(d.tool(), func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}

			res, err := r.Dispatch(ctx, name, args)
			if err != nil {
				level := slog.LevelWarn

				var invErr *toolserrors.InvocationError
				if errors.As(err, &invErr) {
					level = slog.LevelError
				}

				r.log.Log(ctx, level, "Tool call failed", "operation", name, "error", err)

				return nil, err
			}

			return res.CallToolResult(), nil
		})
	}
}

// unknownOperations answers tools/call for unregistered names through
// Dispatch, so callers get an UnknownOperationError and observers see the
// attempt.
func (r *Registry) unknownOperations(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if method != "tools/call" {
			return next(ctx, method, req)
		}

		call, ok := req.(*mcp.CallToolRequest)
		if !ok || call.Params == nil {
			return next(ctx, method, req)
		}

		if _, found := r.Lookup(call.Params.Name); found {
			return next(ctx, method, req)
		}

		_, err := r.Dispatch(ctx, call.Params.Name, call.Params.Arguments)
		r.log.Warn("Tool call failed", "operation", call.Params.Name, "error", err)

		return nil, err
	}
}
