package commands

import (
	"errors"
	"time"

	"parking/internal/core/domain/model/vehicle"
	"parking/internal/pkg/errs"
	"parking/internal/pkg/guard"
)

var ErrExitCommandIsNotConstructed = errors.New("ExitCommand must be created via NewExitCommand constructor")

// ExitCommand closes the active session of the vehicle with the given plate.
// A nil exit time means "now".
type ExitCommand struct { //nolint:recvcheck //using for validation
	licensePlate string
	exitTime     *time.Time

	guard guard.ConstructorGuard
}

func NewExitCommand(licensePlate string, exitTime *time.Time) (ExitCommand, error) {
	cmd := ExitCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setLicensePlate(licensePlate),
		cmd.setExitTime(exitTime),
	); err != nil {
		return ExitCommand{}, err
	}

	return cmd, nil
}

func (c ExitCommand) Validate() error {
	return c.guard.Validate(ErrExitCommandIsNotConstructed)
}

func (c ExitCommand) LicensePlate() string {
	return c.licensePlate
}

func (c ExitCommand) ExitTime() *time.Time {
	if c.exitTime == nil {
		return nil
	}
	t := *c.exitTime
	return &t
}

func (c *ExitCommand) setLicensePlate(plate string) error {
	normalized, err := vehicle.NormalizePlate(plate)
	if err != nil {
		return err
	}
	c.licensePlate = normalized
	return nil
}

func (c *ExitCommand) setExitTime(exitTime *time.Time) error {
	if exitTime == nil {
		return nil
	}
	if exitTime.IsZero() {
		return errs.NewValueIsInvalidError("exitTime")
	}
	t := *exitTime
	c.exitTime = &t
	return nil
}
