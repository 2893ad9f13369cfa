package commands

import (
	"errors"
	"strings"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/pkg/errs"
	"parking/internal/pkg/guard"
)

var ErrTransferCommandIsNotConstructed = errors.New(
	"TransferCommand must be created via NewTransferCommand constructor",
)

// TransferCommand moves the vehicle parked on one spot to another spot.
type TransferCommand struct { //nolint:recvcheck //using for validation
	fromSpotID kernel.UUID
	toSpotID   kernel.UUID
	reason     string

	guard guard.ConstructorGuard
}

// NewTransferCommand requires two distinct valid spot ids. reason is free text.
func NewTransferCommand(fromSpotID, toSpotID kernel.UUID, reason string) (TransferCommand, error) {
	cmd := TransferCommand{
		reason: strings.TrimSpace(reason),
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSpots(fromSpotID, toSpotID),
	); err != nil {
		return TransferCommand{}, err
	}

	return cmd, nil
}

func (c TransferCommand) Validate() error {
	return c.guard.Validate(ErrTransferCommandIsNotConstructed)
}

func (c TransferCommand) FromSpotID() kernel.UUID {
	return c.fromSpotID
}

func (c TransferCommand) ToSpotID() kernel.UUID {
	return c.toSpotID
}

func (c TransferCommand) Reason() string {
	return c.reason
}

func (c *TransferCommand) setSpots(from, to kernel.UUID) error {
	if err := errors.Join(from.Validate(), to.Validate()); err != nil {
		return err
	}
	if from.IsEqual(to) {
		return errs.NewValueIsInvalidErrorWithCause("toSpotId", errors.New("destination equals source"))
	}
	c.fromSpotID = from
	c.toSpotID = to
	return nil
}
