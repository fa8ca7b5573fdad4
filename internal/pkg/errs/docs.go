// Package errs provides the typed errors shared by the domain, application
// and adapter layers.
//
// Every error type pairs a sentinel (ErrValueIsRequired, ErrValueIsInvalid,
// ErrValueIsOutOfRange, ErrObjectNotFound, ErrObjectAlreadyExists) with a struct
// carrying the parameter name and an optional cause. Unwrap returns the
// sentinel, so callers classify failures with errors.Is and read details
// with errors.As.
package errs
