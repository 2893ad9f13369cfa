// Package kernel provides identifier and time primitives shared by the
// parking domain model: UUID for entity identity and Clock for reading the
// current time in a way tests can control.
package kernel
