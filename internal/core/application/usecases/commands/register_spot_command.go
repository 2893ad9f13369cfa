package commands

import (
	"errors"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/pkg/guard"
)

var ErrRegisterSpotCommandIsNotConstructed = errors.New(
	"RegisterSpotCommand must be created via NewRegisterSpotCommand constructor",
)

// RegisterSpotCommand adds a new AVAILABLE spot to the garage.
type RegisterSpotCommand struct { //nolint:recvcheck //using for validation
	spotID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRegisterSpotCommand(spotID kernel.UUID) (RegisterSpotCommand, error) {
	if err := spotID.Validate(); err != nil {
		return RegisterSpotCommand{}, err
	}
	return RegisterSpotCommand{
		spotID: spotID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterSpotCommand) Validate() error {
	return c.guard.Validate(ErrRegisterSpotCommandIsNotConstructed)
}

func (c RegisterSpotCommand) SpotID() kernel.UUID {
	return c.spotID
}
