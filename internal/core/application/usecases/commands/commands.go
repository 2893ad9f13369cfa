// Package commands contains business operations that modify system state.
// Every handler validates its command, runs the change as one unit of work on
// the transaction coordinator and returns the coordinator's uniform Result.
// Multi-entity changes are split into savepoint-guarded steps and every write
// re-asserts the precondition it was decided on.
package commands

import (
	"context"
	"log/slog"

	"parking/internal/core/ports"
	"parking/internal/pkg/errs"
)

// Business failures returned by the handlers. They match under errors.Is by
// code, whatever cause is attached.
var (
	ErrSpotNotAvailable        = errs.NewBusinessRuleError("SPOT_NOT_AVAILABLE", "spot is not available")
	ErrVehicleAlreadyParked    = errs.NewBusinessRuleError("VEHICLE_ALREADY_PARKED", "vehicle is already parked")
	ErrVehicleNotFound         = errs.NewBusinessRuleError("VEHICLE_NOT_FOUND", "vehicle not found")
	ErrNoActiveSession         = errs.NewBusinessRuleError("NO_ACTIVE_SESSION", "no active parking session")
	ErrSourceNotOccupied       = errs.NewBusinessRuleError("SOURCE_NOT_OCCUPIED", "source spot is not occupied")
	ErrDestinationNotAvailable = errs.NewBusinessRuleError("DESTINATION_NOT_AVAILABLE", "destination spot is not available")
	ErrSpotNotFound            = errs.NewBusinessRuleError("SPOT_NOT_FOUND", "spot not found")
	ErrSpotAlreadyExists       = errs.NewBusinessRuleError("SPOT_ALREADY_EXISTS", "spot already exists")
	ErrStatusChangeRejected    = errs.NewBusinessRuleError("STATUS_CHANGE_REJECTED", "spot status change rejected")
)

// publishEvent hands a committed change to the publisher. Delivery failures
// are logged and never undo the committed change.
func publishEvent(ctx context.Context, publisher ports.EventPublisher, logger *slog.Logger, event ports.SessionEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to publish session event",
			"type", string(event.Type),
			"session_id", event.SessionID,
			"transaction_id", event.TransactionID,
			"error", err,
		)
	}
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
