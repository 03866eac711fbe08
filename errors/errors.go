package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // module loading and contract validation
	PhaseMarshal  Phase = "marshal"  // boundary record encoding/decoding
	PhaseValidate Phase = "validate" // data validation
	PhaseRuntime  Phase = "runtime"  // guest calls
	PhaseSchedule Phase = "schedule" // tick scheduling
	PhaseHost     Phase = "host"     // host function binding
	PhaseParse    Phase = "parse"    // WIT/manifest parsing
	PhaseChannel  Phase = "channel"  // server-data delivery
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData    Kind = "invalid_data"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindNonFinite      Kind = "non_finite"
	KindAllocation     Kind = "allocation"
	KindInvalidUTF8    Kind = "invalid_utf8"
	KindMissingExport  Kind = "missing_export"
	KindSignature      Kind = "signature_mismatch"
	KindVersion        Kind = "incompatible_version"
	KindTrap           Kind = "trap"
	KindBudget         Kind = "budget_exceeded"
	KindDisabled       Kind = "instance_disabled"
	KindNotFound       Kind = "not_found"
	KindNotInitialized Kind = "not_initialized"
	KindInvalidInput   Kind = "invalid_input"
	KindRegistration   Kind = "registration"
	KindInstantiation  Kind = "instantiation"
	KindUnknownChannel Kind = "unknown_channel"
)

// Error is the structured error type used throughout the sandbox
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Mod    string
	Call   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Mod != "" {
		b.WriteString(" mod ")
		b.WriteString(e.Mod)
	}
	if e.Call != "" {
		b.WriteString(" in ")
		b.WriteString(e.Call)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
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

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsFault reports whether err is a guest fault (trap or budget violation).
func IsFault(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == KindTrap || e.Kind == KindBudget
	}
	return false
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

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Mod sets the mod name
func (b *Builder) Mod(name string) *Builder {
	b.err.Mod = name
	return b
}

// Call sets the boundary function name
func (b *Builder) Call(name string) *Builder {
	b.err.Call = name
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

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingExport creates an error for a required guest export that is absent
func MissingExport(name string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindMissingExport,
		Call:   name,
		Detail: fmt.Sprintf("required export %q not found", name),
	}
}

// SignatureMismatch creates an error for an export with the wrong core signature
func SignatureMismatch(name, want, got string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindSignature,
		Call:   name,
		Detail: fmt.Sprintf("export %q has signature %s, contract requires %s", name, got, want),
	}
}

// IncompatibleVersion creates a contract version rejection error
func IncompatibleVersion(mod, required, supported string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindVersion,
		Mod:    mod,
		Detail: fmt.Sprintf("mod requires contract %s, host supports %s", required, supported),
	}
}

// Trap creates a fault error for an abnormal guest call termination
func Trap(call string, cause error) *Error {
	return &Error{
		Phase: PhaseRuntime,
		Kind:  KindTrap,
		Call:  call,
		Cause: cause,
	}
}

// Budget creates a fault error for a guest call exceeding its time budget
func Budget(call string, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindBudget,
		Call:   call,
		Detail: "call exceeded its time budget",
		Cause:  cause,
	}
}

// UnknownChannel creates an error for server data addressed to no loaded instance
func UnknownChannel(mod string) *Error {
	return &Error{
		Phase:  PhaseChannel,
		Kind:   KindUnknownChannel,
		Mod:    mod,
		Detail: "no loaded instance for channel",
	}
}

// NonFinite creates a marshal error for a NaN or infinite float
func NonFinite(path []string, value any) *Error {
	return &Error{
		Phase: PhaseMarshal,
		Kind:  KindNonFinite,
		Path:  path,
		Value: value,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size, align uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(call string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindInvalidUTF8,
		Call:   call,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Disabled creates an error for a call attempted on a disabled instance
func Disabled(mod string) *Error {
	return &Error{
		Phase: PhaseSchedule,
		Kind:  KindDisabled,
		Mod:   mod,
	}
}

// Registration creates a host function binding error
func Registration(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("bind host function %q", name),
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
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

// MissingExportsError is returned when contract validation finds more than
// one required guest export absent or malformed.
type MissingExportsError struct {
	Exports []string
}

func (e *MissingExportsError) Error() string {
	if len(e.Exports) == 0 {
		return "[load] missing_export: no exports specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("missing %d required export(s):\n", len(e.Exports)))
	for _, name := range e.Exports {
		b.WriteString("  - ")
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingExportsError) Is(target error) bool {
	_, ok := target.(*MissingExportsError)
	return ok
}
