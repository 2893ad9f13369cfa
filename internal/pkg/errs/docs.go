// Package errs provides standardized error types for the parking application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes error types for validation and lookup failures:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ValueIsOutOfRangeError: For when a value falls outside its allowed bounds
//   - ObjectNotFoundError: For when an object cannot be found
//
// and error types used by the transaction coordinator to classify failures:
//   - BusinessRuleError: Expected outcome of contention or bad input, never retried
//   - TransientError: Store failure likely to succeed on retry (deadlock, lock wait, connection blip)
//   - DeadlineExceededError: A unit of work ran past its deadline
//   - SavepointError: Operation on an unknown or already released savepoint
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
package errs
