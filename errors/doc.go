// Package errors provides structured error types for the scene-bridge library.
//
// Errors are categorized by Phase (where in the binding the error occurred)
// and Kind (error category). The Error type includes rich context: entity
// path, handle, parameter names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMaterial, errors.KindTypeMismatch).
//		Path("metal", "roughness").
//		Detail("float parameter wants 1 component, got 3").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.LengthNotMultiple(errors.PhaseAttribute, 7, 3)
//	err := errors.StaleHandle(errors.PhaseScene, "node")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
