package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrBusinessRule     = errors.New("business rule violated")
	ErrTransient        = errors.New("transient failure")
	ErrDeadlineExceeded = errors.New("deadline exceeded")
	ErrSavepoint        = errors.New("savepoint error")
)

// BusinessRuleError is an expected failure caused by contention or bad input.
// Two BusinessRuleError values match under errors.Is when their codes are equal,
// so package-level values can serve as sentinels while callers attach a cause.
//
// Example:
//
//	var ErrSpotNotAvailable = errs.NewBusinessRuleError("SPOT_NOT_AVAILABLE", "spot is not available")
//
//	return ErrSpotNotAvailable.WithCause(fmt.Errorf("spot %s is %s", id, status))
type BusinessRuleError struct {
	Code    string
	Message string
	Cause   error
}

func NewBusinessRuleError(code, message string) *BusinessRuleError {
	return &BusinessRuleError{
		Code:    code,
		Message: message,
	}
}

func NewBusinessRuleErrorWithCause(code, message string, cause error) *BusinessRuleError {
	return &BusinessRuleError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithCause returns a copy of the error carrying cause.
func (e *BusinessRuleError) WithCause(cause error) *BusinessRuleError {
	return NewBusinessRuleErrorWithCause(e.Code, e.Message, cause)
}

func (e *BusinessRuleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessRuleError) Is(target error) bool {
	var other *BusinessRuleError
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

func (e *BusinessRuleError) Unwrap() error {
	return ErrBusinessRule
}

// TransientError marks a store failure that is likely to succeed if the whole
// unit of work is retried: serialization failures, deadlocks, lock timeouts,
// dropped connections.
type TransientError struct {
	Operation string
	Cause     error
}

func NewTransientError(operation string) *TransientError {
	return &TransientError{Operation: operation}
}

func NewTransientErrorWithCause(operation string, cause error) *TransientError {
	return &TransientError{
		Operation: operation,
		Cause:     cause,
	}
}

func (e *TransientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrTransient, e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrTransient, e.Operation)
}

func (e *TransientError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrTransient}
	}
	return []error{ErrTransient, e.Cause}
}

// DeadlineExceededError reports a unit of work that did not finish before its deadline.
type DeadlineExceededError struct {
	Deadline time.Time
	Cause    error
}

func NewDeadlineExceededError(deadline time.Time) *DeadlineExceededError {
	return &DeadlineExceededError{Deadline: deadline}
}

func NewDeadlineExceededErrorWithCause(deadline time.Time, cause error) *DeadlineExceededError {
	return &DeadlineExceededError{
		Deadline: deadline,
		Cause:    cause,
	}
}

func (e *DeadlineExceededError) Error() string {
	msg := fmt.Sprintf("%s: deadline was %s", ErrDeadlineExceeded, e.Deadline.Format(time.RFC3339Nano))
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *DeadlineExceededError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrDeadlineExceeded}
	}
	return []error{ErrDeadlineExceeded, e.Cause}
}

// SavepointError reports misuse of the savepoint stack. It always indicates a
// programming error and is never retried.
type SavepointError struct {
	SavepointID string
	Reason      string
}

func NewSavepointError(savepointID, reason string) *SavepointError {
	return &SavepointError{
		SavepointID: savepointID,
		Reason:      reason,
	}
}

func (e *SavepointError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrSavepoint, e.SavepointID, e.Reason)
}

func (e *SavepointError) Unwrap() error {
	return ErrSavepoint
}
