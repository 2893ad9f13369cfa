package commands

import (
	"errors"
	"fmt"
	"strings"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/spot"
	"parking/internal/pkg/errs"
	"parking/internal/pkg/guard"
)

const MaxBulkSpotIDs = 10000

var ErrBulkUpdateSpotStatusCommandIsNotConstructed = errors.New(
	"BulkUpdateSpotStatusCommand must be created via NewBulkUpdateSpotStatusCommand constructor",
)

// BulkUpdateSpotStatusCommand applies one administrative status to many spots.
type BulkUpdateSpotStatusCommand struct { //nolint:recvcheck //using for validation
	spotIDs   []kernel.UUID
	newStatus spot.Status
	reason    string

	guard guard.ConstructorGuard
}

// NewBulkUpdateSpotStatusCommand drops duplicate ids, keeping first-seen
// order. OCCUPIED is not a valid target: occupancy only changes by parking.
func NewBulkUpdateSpotStatusCommand(
	spotIDs []kernel.UUID,
	newStatus spot.Status,
	reason string,
) (BulkUpdateSpotStatusCommand, error) {
	cmd := BulkUpdateSpotStatusCommand{
		reason: strings.TrimSpace(reason),
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSpotIDs(spotIDs),
		cmd.setNewStatus(newStatus),
	); err != nil {
		return BulkUpdateSpotStatusCommand{}, err
	}

	return cmd, nil
}

func (c BulkUpdateSpotStatusCommand) Validate() error {
	return c.guard.Validate(ErrBulkUpdateSpotStatusCommandIsNotConstructed)
}

func (c BulkUpdateSpotStatusCommand) SpotIDs() []kernel.UUID {
	out := make([]kernel.UUID, len(c.spotIDs))
	copy(out, c.spotIDs)
	return out
}

func (c BulkUpdateSpotStatusCommand) NewStatus() spot.Status {
	return c.newStatus
}

func (c BulkUpdateSpotStatusCommand) Reason() string {
	return c.reason
}

func (c *BulkUpdateSpotStatusCommand) setSpotIDs(ids []kernel.UUID) error {
	if len(ids) == 0 {
		return errs.NewValueIsRequiredError("spotIds")
	}
	if len(ids) > MaxBulkSpotIDs {
		return errs.NewValueIsOutOfRangeError("spotIds", len(ids), 1, MaxBulkSpotIDs)
	}

	seen := make(map[kernel.UUID]struct{}, len(ids))
	unique := make([]kernel.UUID, 0, len(ids))
	for i, id := range ids {
		if err := id.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("spotIds[%d]", i), err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	c.spotIDs = unique
	return nil
}

func (c *BulkUpdateSpotStatusCommand) setNewStatus(status spot.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if status == spot.Occupied {
		return errs.NewValueIsInvalidErrorWithCause("status", errors.New("OCCUPIED can only be set by parking a vehicle"))
	}
	c.newStatus = status
	return nil
}
