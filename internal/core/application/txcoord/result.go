package txcoord

import "time"

// Result is the uniform outcome of a unit of work. Failures are values, never panics.
type Result[T any] struct {
	Success       bool
	Data          T
	Err           error
	Kind          Kind
	TransactionID string
	Attempts      int
	Duration      time.Duration
	// Context is the state of the final attempt when the unit finished.
	Context Snapshot
}

// Rejected is the Result of an operation refused before any unit of work was
// started, typically because its input failed validation.
func Rejected[T any](err error) Result[T] {
	kind := Classify(err)
	if kind == KindFatal || kind == KindNone {
		kind = KindValidation
	}
	return Result[T]{Err: err, Kind: kind}
}
