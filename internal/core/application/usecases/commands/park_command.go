package commands

import (
	"errors"
	"time"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/vehicle"
	"parking/internal/pkg/errs"
	"parking/internal/pkg/guard"
)

var ErrParkCommandIsNotConstructed = errors.New("ParkCommand must be created via NewParkCommand constructor")

// ParkCommand asks to park the vehicle with the given plate on a spot. The
// vehicle is registered on first use with the given type.
//
// Example:
//
//	cmd, err := NewParkCommand(spotID, "ab 123 cd", vehicle.Car, nil)
//	if err != nil {
//	    return fmt.Errorf("invalid park request: %w", err)
//	}
//	result := parkHandler.Handle(ctx, cmd)
type ParkCommand struct { //nolint:recvcheck //using for validation
	spotID       kernel.UUID
	licensePlate string
	vehicleType  vehicle.Type
	expectedEnd  *time.Time

	guard guard.ConstructorGuard
}

// NewParkCommand validates the spot id and normalizes the plate.
// expectedEnd is optional and only feeds availability checks.
func NewParkCommand(
	spotID kernel.UUID,
	licensePlate string,
	vehicleType vehicle.Type,
	expectedEnd *time.Time,
) (ParkCommand, error) {
	cmd := ParkCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSpotID(spotID),
		cmd.setLicensePlate(licensePlate),
		cmd.setVehicleType(vehicleType),
		cmd.setExpectedEnd(expectedEnd),
	); err != nil {
		return ParkCommand{}, err
	}

	return cmd, nil
}

func (c ParkCommand) Validate() error {
	return c.guard.Validate(ErrParkCommandIsNotConstructed)
}

func (c ParkCommand) SpotID() kernel.UUID {
	return c.spotID
}

// LicensePlate returns the normalized plate.
func (c ParkCommand) LicensePlate() string {
	return c.licensePlate
}

func (c ParkCommand) VehicleType() vehicle.Type {
	return c.vehicleType
}

func (c ParkCommand) ExpectedEnd() *time.Time {
	if c.expectedEnd == nil {
		return nil
	}
	t := *c.expectedEnd
	return &t
}

func (c *ParkCommand) setSpotID(spotID kernel.UUID) error {
	if err := spotID.Validate(); err != nil {
		return err
	}
	c.spotID = spotID
	return nil
}

func (c *ParkCommand) setLicensePlate(plate string) error {
	normalized, err := vehicle.NormalizePlate(plate)
	if err != nil {
		return err
	}
	c.licensePlate = normalized
	return nil
}

func (c *ParkCommand) setVehicleType(vehicleType vehicle.Type) error {
	if err := vehicleType.Validate(); err != nil {
		return err
	}
	c.vehicleType = vehicleType
	return nil
}

func (c *ParkCommand) setExpectedEnd(expectedEnd *time.Time) error {
	if expectedEnd == nil {
		return nil
	}
	if expectedEnd.IsZero() {
		return errs.NewValueIsInvalidError("expectedEnd")
	}
	t := *expectedEnd
	c.expectedEnd = &t
	return nil
}
