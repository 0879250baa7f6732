// Package rcerrors implements the structured error taxonomy used across the
// reconciliation engine: kind plus operation plus identity context, no bare
// free-text errors escape package boundaries.
package rcerrors

import (
	"fmt"
	"maps"
	"sync"
)

// Kind classifies the failure.
type Kind string

const (
	// KindValidation marks malformed input rejected before reconciliation
	// starts: bad schema, empty column lists, inverted intervals, wrong
	// time precision, unknown mode.
	KindValidation Kind = "validation_error"
	// KindInvariant marks corrupt input discovered mid-run: an overlapping
	// live projection within an ID group. Fatal; aborts the whole run.
	KindInvariant Kind = "invariant_violation"
	// KindResourceExhaustion marks failure to submit or run a unit of work
	// under the parallel dispatcher.
	KindResourceExhaustion Kind = "resource_exhaustion"
)

// Error is the one error type this module returns to callers.
type Error struct {
	Kind      Kind
	Operation string
	Message   string
	// IdentityKey is the opaque grouping key of the ID group this error
	// concerns, if any (empty for batch-level validation errors).
	IdentityKey string
	Cause       error

	context   map[string]any
	contextMu sync.RWMutex
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed in %s: %s (caused by: %v)", e.Kind, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s failed in %s: %s", e.Kind, e.Operation, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error of the given kind.
func New(kind Kind, operation, message string, cause error) *Error {
	return &Error{
		Kind:      kind,
		Operation: operation,
		Message:   message,
		Cause:     cause,
		context:   make(map[string]any),
	}
}

// WithContext returns a copy of e with key/value added to its context map.
func (e *Error) WithContext(key string, value any) *Error {
	e.contextMu.RLock()
	cloned := maps.Clone(e.context)
	e.contextMu.RUnlock()

	if cloned == nil {
		cloned = make(map[string]any)
	}
	cloned[key] = value
	return &Error{
		Kind:        e.Kind,
		Operation:   e.Operation,
		Message:     e.Message,
		IdentityKey: e.IdentityKey,
		Cause:       e.Cause,
		context:     cloned,
	}
}

// WithIdentity returns a copy of e with IdentityKey set.
func (e *Error) WithIdentity(key string) *Error {
	return &Error{
		Kind:        e.Kind,
		Operation:   e.Operation,
		Message:     e.Message,
		IdentityKey: key,
		Cause:       e.Cause,
		context:     e.GetContextMap(),
	}
}

// GetContextMap returns a copy of the error's context map.
func (e *Error) GetContextMap() map[string]any {
	e.contextMu.RLock()
	defer e.contextMu.RUnlock()
	return maps.Clone(e.context)
}

func Validation(operation, message string, cause error) *Error {
	return New(KindValidation, operation, message, cause)
}

func Invariant(operation, message string, cause error) *Error {
	return New(KindInvariant, operation, message, cause)
}

func ResourceExhaustion(operation, message string, cause error) *Error {
	return New(KindResourceExhaustion, operation, message, cause)
}
