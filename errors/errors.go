package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseProvision Phase = "provision" // data file materialization
	PhaseInit      Phase = "init"      // engine setup and teardown
	PhaseValidate  Phase = "validate"  // request validation
	PhaseDispatch  Phase = "dispatch"  // scheduling a call
	PhaseEngine    Phase = "engine"    // inside the native call
	PhaseConfig    Phase = "config"    // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindProvisioning    Kind = "provisioning"
	KindInitialization  Kind = "initialization"
	KindNotInitialized  Kind = "not_initialized"
	KindInvalidArgument Kind = "invalid_argument"
	KindOperation       Kind = "operation"
)

// Sentinels for errors.Is. They carry no phase, so they match any phase.
var (
	ErrProvisioning    = &Error{Kind: KindProvisioning}
	ErrInitialization  = &Error{Kind: KindInitialization}
	ErrNotInitialized  = &Error{Kind: KindNotInitialized}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrOperation       = &Error{Kind: KindOperation}
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Param  string
	Detail string
	Code   int32
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" at ")
		b.WriteString(e.Op)
		if e.Param != "" {
			b.WriteByte('.')
			b.WriteString(e.Param)
		}
	}

	if e.Kind == KindOperation {
		b.WriteString(" (status ")
		b.WriteString(strconv.FormatInt(int64(e.Code), 10))
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Kinds must agree; the phase is compared only when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Phase == "" || e.Phase == t.Phase
}

// Message returns the engine-facing text of the error: the detail when set,
// otherwise the full formatted error.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the operation identifier
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Param sets the offending parameter name
func (b *Builder) Param(name string) *Builder {
	b.err.Param = name
	return b
}

// Code sets the engine status code
func (b *Builder) Code(code int32) *Builder {
	b.err.Code = code
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// ProvisioningFailed creates an asset provisioning error
func ProvisioningFailed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseProvision,
		Kind:   KindProvisioning,
		Detail: detail,
		Cause:  cause,
	}
}

// InitializationFailed creates an engine setup error
func InitializationFailed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindInitialization,
		Detail: detail,
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error for a missing engine or component
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// InvalidArgument creates a request validation error
func InvalidArgument(op, param, detail string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidArgument,
		Op:     op,
		Param:  param,
		Detail: detail,
	}
}

// UnknownOperation creates a validation error for an operation id with no schema
func UnknownOperation(op string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidArgument,
		Op:     op,
		Detail: fmt.Sprintf("unknown operation %q", op),
		Value:  op,
	}
}

// OperationFailed creates an engine-reported failure. The message is kept verbatim.
func OperationFailed(op string, code int32, message string) *Error {
	return &Error{
		Phase:  PhaseEngine,
		Kind:   KindOperation,
		Op:     op,
		Code:   code,
		Detail: message,
	}
}

// Fault creates an operation error for a backend failure that produced no
// status code, such as a trap inside the guest.
func Fault(op string, cause error) *Error {
	detail := "engine fault"
	if cause != nil {
		detail = cause.Error()
	}
	return &Error{
		Phase:  PhaseEngine,
		Kind:   KindOperation,
		Op:     op,
		Code:   -1,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidConfig creates a configuration validation error
func InvalidConfig(field, detail string) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidArgument,
		Param:  field,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}
