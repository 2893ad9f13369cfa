// Package ports defines the contracts between the parking core and its
// infrastructure: one capability interface per entity, the transactional unit
// of work that binds them, and the outbound event publisher.
package ports

import (
	"context"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/spot"
)

// SpotRepository persists spots.
//
// Writes go through UpdateIfStatus, which re-asserts the status the caller
// observed when it decided to write. A false result with a nil error means the
// precondition no longer held (another transaction won the race) and nothing
// was written.
type SpotRepository interface {
	// Add persists a new spot.
	Add(ctx context.Context, s *spot.Spot) error

	// Get returns the spot or an *errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*spot.Spot, error)

	// UpdateIfStatus writes the spot's current state only if the stored status
	// equals expected. Reports whether a row was written.
	UpdateIfStatus(ctx context.Context, s *spot.Spot, expected spot.Status) (bool, error)

	// Delete removes the spot. Returns *errs.ObjectNotFoundError if absent.
	Delete(ctx context.Context, id kernel.UUID) error
}
