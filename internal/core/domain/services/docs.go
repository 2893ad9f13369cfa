// Package services contains stateless domain services of the parking system:
// the tariff used to bill a finished session and the interval-overlap check
// used to decide whether a spot is free during a time window.
package services
