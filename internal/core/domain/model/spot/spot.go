package spot

import (
	"errors"
	"fmt"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/pkg/errs"
)

var (
	ErrSpotIsNotConstructed = errors.New("Spot must be created via NewSpot or RestoreSpot constructor")
	ErrInvalidTransition    = errors.New("invalid spot status transition")
)

// Spot is a parking space. currentVehicleID is a back-reference to the parked
// vehicle and is set exactly when the spot is OCCUPIED.
type Spot struct {
	id               kernel.UUID
	status           Status
	currentVehicleID *kernel.UUID

	isConstructed bool
}

// NewSpot creates an AVAILABLE spot.
func NewSpot(id kernel.UUID) (*Spot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Spot{
		id:            id,
		status:        Available,
		isConstructed: true,
	}, nil
}

// RestoreSpot rebuilds a spot from persisted state, enforcing that a vehicle
// reference is present iff the spot is OCCUPIED.
func RestoreSpot(id kernel.UUID, status Status, currentVehicleID *kernel.UUID) (*Spot, error) {
	if err := errors.Join(id.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	if (status == Occupied) != (currentVehicleID != nil) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"spot vehicle reference",
			fmt.Errorf("spot %s is %s with vehicle reference %v", id, status, currentVehicleID != nil),
		)
	}
	if currentVehicleID != nil {
		if err := currentVehicleID.Validate(); err != nil {
			return nil, err
		}
	}
	return &Spot{
		id:               id,
		status:           status,
		currentVehicleID: copyID(currentVehicleID),
		isConstructed:    true,
	}, nil
}

func (s *Spot) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrSpotIsNotConstructed
	}
	return nil
}

func (s *Spot) ID() kernel.UUID {
	return s.id
}

func (s *Spot) Status() Status {
	return s.status
}

func (s *Spot) CurrentVehicle() *kernel.UUID {
	return copyID(s.currentVehicleID)
}

func (s *Spot) IsAvailable() bool {
	return s.status == Available
}

func (s *Spot) IsOccupied() bool {
	return s.status == Occupied
}

// Occupy moves an AVAILABLE spot to OCCUPIED by vehicleID.
func (s *Spot) Occupy(vehicleID kernel.UUID) error {
	if err := vehicleID.Validate(); err != nil {
		return err
	}
	if s.status != Available {
		return fmt.Errorf("%w: cannot occupy spot in %s status", ErrInvalidTransition, s.status)
	}
	s.status = Occupied
	s.currentVehicleID = &vehicleID
	return nil
}

// Release frees an OCCUPIED spot.
func (s *Spot) Release() error {
	if s.status != Occupied {
		return fmt.Errorf("%w: cannot release spot in %s status", ErrInvalidTransition, s.status)
	}
	s.status = Available
	s.currentVehicleID = nil
	return nil
}

// ChangeStatus applies an administrative status change. Occupancy is owned by
// Occupy/Release, so neither the current nor the target status may be OCCUPIED.
func (s *Spot) ChangeStatus(newStatus Status) error {
	if err := newStatus.Validate(); err != nil {
		return err
	}
	if newStatus == Occupied {
		return fmt.Errorf("%w: OCCUPIED can only be set by parking a vehicle", ErrInvalidTransition)
	}
	if s.status == Occupied {
		return fmt.Errorf("%w: spot is OCCUPIED", ErrInvalidTransition)
	}
	s.status = newStatus
	return nil
}

func copyID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
