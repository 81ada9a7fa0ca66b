package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/hashicorp/go-multierror"

	toolserrors "github.com/wagiedev/project-tools-mcp/internal/errors"
)

// validator checks raw arguments against a descriptor's input schema and
// names the offending fields when they do not match.
type validator struct {
	operation string
	required  []string
	schema    *jsonschema.Resolved
	declared  map[string]bool
	props     map[string]*jsonschema.Resolved
	extra     *jsonschema.Resolved
}

func newValidator(d *Descriptor) (*validator, error) {
	resolved, err := d.InputSchema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve input schema: %w", err)
	}

	v := &validator{
		operation: d.Name,
		required:  d.InputSchema.Required,
		schema:    resolved,
		declared:  make(map[string]bool, len(d.InputSchema.Properties)),
		props:     make(map[string]*jsonschema.Resolved, len(d.InputSchema.Properties)),
	}

	// Per-property resolution only sharpens error reporting; a property that
	// cannot be resolved on its own is still covered by the whole schema.
	for name, prop := range d.InputSchema.Properties {
		v.declared[name] = true

		if prop == nil {
			continue
		}

		if rp, err := prop.Resolve(nil); err == nil {
			v.props[name] = rp
		}
	}

	if d.InputSchema.AdditionalProperties != nil {
		if rp, err := d.InputSchema.AdditionalProperties.Resolve(nil); err == nil {
			v.extra = rp
		}
	}

	return v, nil
}

// validate returns the normalized arguments, or a ValidationError.
// Empty arguments are treated as an empty object.
func (v *validator) validate(args json.RawMessage) (json.RawMessage, error) {
	raw := bytes.TrimSpace(args)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, &toolserrors.ValidationError{
			Operation: v.operation,
			Err:       fmt.Errorf("decode arguments: %w", err),
		}
	}

	obj, ok := instance.(map[string]any)
	if !ok {
		return nil, &toolserrors.ValidationError{
			Operation: v.operation,
			Err:       errors.New("arguments must be a JSON object"),
		}
	}

	schemaErr := v.schema.Validate(obj)
	if schemaErr == nil {
		return raw, nil
	}

	causes := make(map[string]error, len(obj))

	for _, name := range v.required {
		if _, ok := obj[name]; !ok {
			causes[name] = errors.New("required")
		}
	}

	for name, value := range obj {
		if prop, ok := v.props[name]; ok {
			if err := prop.Validate(value); err != nil {
				causes[name] = err
			}

			continue
		}

		if !v.declared[name] && v.extra != nil {
			if err := v.extra.Validate(value); err != nil {
				causes[name] = errors.New("not allowed")
			}
		}
	}

	if len(causes) == 0 {
		return nil, &toolserrors.ValidationError{Operation: v.operation, Err: schemaErr}
	}

	fields := make([]string, 0, len(causes))
	for name := range causes {
		fields = append(fields, name)
	}

	slices.Sort(fields)

	var merr *multierror.Error
	for _, name := range fields {
		merr = multierror.Append(merr, fmt.Errorf("%s: %w", name, causes[name]))
	}

	merr.ErrorFormat = joinErrors

	return nil, &toolserrors.ValidationError{
		Operation: v.operation,
		Fields:    fields,
		Err:       merr,
	}
}

func joinErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return strings.Join(msgs, "; ")
}
