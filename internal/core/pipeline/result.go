package pipeline

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Kinds
// =============================================================================

// ErrorKind classifies every failure that can cross the pipeline
// boundary. Nothing else does.
type ErrorKind int

const (
	// ValidationError: one or more rule failures before dispatch.
	ValidationError ErrorKind = iota + 1
	// NotFoundError: a handler could not locate a referenced entity.
	NotFoundError
	// ConflictError: a business invariant would be violated.
	ConflictError
	// DependencyError: an outbound collaborator failed, timed out, or
	// the request was cancelled.
	DependencyError
	// UnexpectedError: an unanticipated fault caught at the pipeline
	// boundary. The detail is logged; callers see a generic message.
	UnexpectedError
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationError:
		return "validation_error"
	case NotFoundError:
		return "not_found"
	case ConflictError:
		return "conflict"
	case DependencyError:
		return "dependency_error"
	case UnexpectedError:
		return "unexpected_error"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the kind as its string form on the wire.
func (k ErrorKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// =============================================================================
// Error
// =============================================================================

// Error is the typed failure carried by a Result. The unexported cause
// is preserved for logging via Unwrap but never serialized.
type Error struct {
	Kind          ErrorKind `json:"kind"`
	Message       string    `json:"message"`
	Failures      []Failure `json:"failures,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Invalid builds a ValidationError carrying the complete failure set.
func Invalid(failures []Failure) *Error {
	return &Error{Kind: ValidationError, Message: "request validation failed", Failures: failures}
}

// NotFoundf builds a NotFoundError.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFoundError, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a ConflictError.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: ConflictError, Message: fmt.Sprintf(format, args...)}
}

// Dependencyf builds a DependencyError.
func Dependencyf(format string, args ...any) *Error {
	return &Error{Kind: DependencyError, Message: fmt.Sprintf(format, args...)}
}

// Dependency builds a DependencyError wrapping the collaborator failure.
func Dependency(cause error, message string) *Error {
	return &Error{Kind: DependencyError, Message: message, cause: cause}
}

// Unexpectedf builds an UnexpectedError with a caller-visible message.
func Unexpectedf(format string, args ...any) *Error {
	return &Error{Kind: UnexpectedError, Message: fmt.Sprintf(format, args...)}
}

// Unexpected wraps an unanticipated fault. The caller-visible message
// is deliberately generic; the cause stays available for logging.
func Unexpected(cause error) *Error {
	return &Error{Kind: UnexpectedError, Message: "internal error", cause: cause}
}

// AsError unwraps err to a typed *Error if one is in the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// =============================================================================
// Result
// =============================================================================

// Result is the uniform envelope returned for every request: exactly
// one of Value or Err is meaningful, never both.
type Result struct {
	Value         any    `json:"value,omitempty"`
	Err           *Error `json:"error,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// OK reports whether the request succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Success wraps a handler's value. The correlation middleware stamps
// the id on the way out.
func Success(value any) Result {
	return Result{Value: value}
}

// Failed wraps a typed error.
func Failed(err *Error) Result {
	return Result{Err: err}
}

// ValueAs extracts a success value with its concrete type.
func ValueAs[T any](r Result) (T, error) {
	var zero T
	if r.Err != nil {
		return zero, r.Err
	}
	v, ok := r.Value.(T)
	if !ok {
		return zero, fmt.Errorf("result value is %T, not %T", r.Value, zero)
	}
	return v, nil
}
