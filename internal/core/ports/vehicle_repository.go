package ports

import (
	"context"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/vehicle"
)

// VehicleRepository persists vehicles. Licence plates are unique; adding a
// second vehicle with the same normalized plate fails.
type VehicleRepository interface {
	Add(ctx context.Context, v *vehicle.Vehicle) error

	Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error)

	// FindByPlate looks a vehicle up by its normalized plate. Returns
	// *errs.ObjectNotFoundError when no vehicle has that plate.
	FindByPlate(ctx context.Context, licensePlate string) (*vehicle.Vehicle, error)

	// UpdateIfSpot writes the vehicle only if its stored spot reference equals
	// expectedSpotID (nil meaning "not parked").
	UpdateIfSpot(ctx context.Context, v *vehicle.Vehicle, expectedSpotID *kernel.UUID) (bool, error)

	Delete(ctx context.Context, id kernel.UUID) error
}
