// Package spot models a single parking spot and its occupancy state machine.
//
// Status transitions:
//
//	AVAILABLE ──Occupy──> OCCUPIED ──Release──> AVAILABLE
//	AVAILABLE <──ChangeStatus──> RESERVED | MAINTENANCE | OUT_OF_ORDER
//
// OCCUPIED is entered and left only through Occupy/Release, which the park,
// exit and transfer operations drive. Administrative status changes never
// touch an occupied spot.
package spot
