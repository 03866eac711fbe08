// Package errors provides structured error types for the mod sandbox.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: field path, offending
// value, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMarshal, errors.KindNonFinite).
//		Path("transform", "translation", "x").
//		Value(v).
//		Detail("NaN rejected").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MissingExport("update")
//	err := errors.Trap("handle-server-data", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
//
// Broad families fall out of the phase and kind axes: load failures are
// PhaseLoad errors, marshaling failures are PhaseMarshal errors, contained
// guest faults are KindTrap or KindBudget, and server channel problems are
// PhaseChannel errors.
package errors
