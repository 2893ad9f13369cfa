// Package vehicle models a vehicle known to the garage, identified by its
// case-normalized licence plate.
package vehicle

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/pkg/errs"
)

const maxPlateLength = 16

var (
	ErrVehicleIsNotConstructed = errors.New("Vehicle must be created via NewVehicle or RestoreVehicle constructor")
	ErrAlreadyParked           = errors.New("vehicle is already parked")
	ErrNotParked               = errors.New("vehicle is not parked")

	platePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 -]*$`)
)

// NormalizePlate trims, collapses inner whitespace and upper-cases a plate.
func NormalizePlate(plate string) (string, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(plate), " "))
	if normalized == "" {
		return "", errs.NewValueIsRequiredError("licensePlate")
	}
	if len(normalized) > maxPlateLength {
		return "", errs.NewValueIsOutOfRangeError("licensePlate length", len(normalized), 1, maxPlateLength)
	}
	if !platePattern.MatchString(normalized) {
		return "", errs.NewValueIsInvalidErrorWithCause("licensePlate", fmt.Errorf("%q has invalid characters", plate))
	}
	return normalized, nil
}

type Vehicle struct {
	id            kernel.UUID
	licensePlate  string
	vehicleType   Type
	currentSpotID *kernel.UUID

	isConstructed bool
}

func NewVehicle(id kernel.UUID, licensePlate string, vehicleType Type) (*Vehicle, error) {
	return RestoreVehicle(id, licensePlate, vehicleType, nil)
}

func RestoreVehicle(id kernel.UUID, licensePlate string, vehicleType Type, currentSpotID *kernel.UUID) (*Vehicle, error) {
	plate, plateErr := NormalizePlate(licensePlate)
	if err := errors.Join(id.Validate(), plateErr, vehicleType.Validate()); err != nil {
		return nil, err
	}
	v := &Vehicle{
		id:            id,
		licensePlate:  plate,
		vehicleType:   vehicleType,
		isConstructed: true,
	}
	if currentSpotID != nil {
		if err := currentSpotID.Validate(); err != nil {
			return nil, err
		}
		spotID := *currentSpotID
		v.currentSpotID = &spotID
	}
	return v, nil
}

func (v *Vehicle) Validate() error {
	if v == nil || !v.isConstructed {
		return ErrVehicleIsNotConstructed
	}
	return nil
}

func (v *Vehicle) ID() kernel.UUID {
	return v.id
}

func (v *Vehicle) LicensePlate() string {
	return v.licensePlate
}

func (v *Vehicle) Type() Type {
	return v.vehicleType
}

func (v *Vehicle) CurrentSpot() *kernel.UUID {
	if v.currentSpotID == nil {
		return nil
	}
	spotID := *v.currentSpotID
	return &spotID
}

func (v *Vehicle) IsParked() bool {
	return v.currentSpotID != nil
}

// ParkAt records that the vehicle now stands on spotID.
func (v *Vehicle) ParkAt(spotID kernel.UUID) error {
	if err := spotID.Validate(); err != nil {
		return err
	}
	if v.currentSpotID != nil {
		return fmt.Errorf("%w: at spot %s", ErrAlreadyParked, v.currentSpotID)
	}
	v.currentSpotID = &spotID
	return nil
}

// MoveTo changes the spot of a parked vehicle.
func (v *Vehicle) MoveTo(spotID kernel.UUID) error {
	if err := spotID.Validate(); err != nil {
		return err
	}
	if v.currentSpotID == nil {
		return ErrNotParked
	}
	v.currentSpotID = &spotID
	return nil
}

// Leave clears the spot reference.
func (v *Vehicle) Leave() error {
	if v.currentSpotID == nil {
		return ErrNotParked
	}
	v.currentSpotID = nil
	return nil
}
