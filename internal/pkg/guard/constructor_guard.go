// Package guard provides ConstructorGuard, a marker embedded in command and
// query values so that zero-value instances can be told apart from values built
// through their constructors.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether its owner was built by a constructor.
//
// Example:
//
//	type ParkVehicleCommand struct {
//	    plate string
//	    guard guard.ConstructorGuard
//	}
//
//	func (c ParkVehicleCommand) Validate() error {
//	    return c.guard.Validate(ErrParkVehicleCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when nil)
// if the guard is a zero value.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
