// Package errors provides structured error types for the ephemeris bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The five kinds callers branch on are:
//
//	KindProvisioning      data files could not be materialized (fatal at construction)
//	KindInitialization    the engine could not be set up (sticky until retried)
//	KindNotInitialized    a call reached an engine that is not live
//	KindInvalidArgument   the request was malformed; the engine was never touched
//	KindOperation         the engine reported a negative status
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindInvalidArgument).
//		Op("houses").
//		Param("system").
//		Detail("expected a single character, got %q", v).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OperationFailed("calc_ut", -1, "illegal planet number 99.")
//
// Kind matching works through the standard library:
//
//	if errors.Is(err, errors.ErrOperation) { ... }
package errors
