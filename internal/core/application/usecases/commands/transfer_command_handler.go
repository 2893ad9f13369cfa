package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"parking/internal/core/application/txcoord"
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/session"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/ports"
	"parking/internal/pkg/errs"
)

type TransferResult struct {
	Session  *session.Session
	FromSpot *spot.Spot
	ToSpot   *spot.Spot
	Reason   string
}

// TransferCommandHandler moves an active session, and the vehicle with it,
// from an OCCUPIED spot to an AVAILABLE one. Of two concurrent transfers out of
// the same spot exactly one succeeds; the other gets ErrSourceNotOccupied.
type TransferCommandHandler struct {
	coordinator *txcoord.Coordinator
	clock       kernel.Clock
	publisher   ports.EventPublisher
	logger      *slog.Logger
}

func NewTransferCommandHandler(
	coordinator *txcoord.Coordinator,
	clock kernel.Clock,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) TransferCommandHandler {
	return TransferCommandHandler{
		coordinator: coordinator,
		clock:       clock,
		publisher:   publisher,
		logger:      loggerOrDefault(logger),
	}
}

func (h *TransferCommandHandler) Handle(ctx context.Context, cmd TransferCommand) txcoord.Result[TransferResult] {
	if err := cmd.Validate(); err != nil {
		return txcoord.Rejected[TransferResult](err)
	}

	opts := txcoord.Options{Priority: txcoord.PriorityNormal}.
		WithMetadata("operation", "transfer").
		WithMetadata("from_spot_id", cmd.FromSpotID().String()).
		WithMetadata("to_spot_id", cmd.ToSpotID().String())
	if cmd.Reason() != "" {
		opts = opts.WithMetadata("reason", cmd.Reason())
	}

	result := txcoord.RunUnit(ctx, h.coordinator, opts,
		func(ctx context.Context, uow ports.UnitOfWork, tc *txcoord.TransactionContext) (TransferResult, error) {
			return h.transfer(ctx, uow, tc, cmd)
		})

	if result.Success {
		s := result.Data.Session
		publishEvent(ctx, h.publisher, h.logger, ports.SessionEvent{
			Type:          ports.SessionTransferred,
			TransactionID: result.TransactionID,
			SessionID:     s.ID().String(),
			VehicleID:     s.VehicleID().String(),
			SpotID:        cmd.ToSpotID().String(),
			FromSpotID:    cmd.FromSpotID().String(),
			OccurredAt:    h.clock.Now(),
		})
	}
	return result
}

func (h *TransferCommandHandler) transfer(
	ctx context.Context,
	uow ports.UnitOfWork,
	tc *txcoord.TransactionContext,
	cmd TransferCommand,
) (TransferResult, error) {
	spots := uow.SpotRepository()
	vehicles := uow.VehicleRepository()
	sessions := uow.SessionRepository()

	from, err := spots.Get(ctx, cmd.FromSpotID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return TransferResult{}, ErrSourceNotOccupied.WithCause(err)
	}
	if err != nil {
		return TransferResult{}, err
	}
	if !from.IsOccupied() {
		return TransferResult{}, ErrSourceNotOccupied.WithCause(
			fmt.Errorf("spot %s is %s", from.ID(), from.Status()),
		)
	}

	to, err := spots.Get(ctx, cmd.ToSpotID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return TransferResult{}, ErrDestinationNotAvailable.WithCause(err)
	}
	if err != nil {
		return TransferResult{}, err
	}
	if !to.IsAvailable() {
		return TransferResult{}, ErrDestinationNotAvailable.WithCause(
			fmt.Errorf("spot %s is %s", to.ID(), to.Status()),
		)
	}

	s, err := sessions.FindActiveBySpot(ctx, from.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return TransferResult{}, ErrNoActiveSession.WithCause(err)
	}
	if err != nil {
		return TransferResult{}, err
	}
	vehicleID := s.VehicleID()

	if err = h.coordinator.Step(ctx, tc, "move-session", func() error {
		if err := s.MoveTo(to.ID()); err != nil {
			return err
		}
		ok, err := sessions.UpdateIfStatus(ctx, s, session.Active, from.ID())
		if err != nil {
			return err
		}
		if !ok {
			return ErrSourceNotOccupied.WithCause(fmt.Errorf("session %s left spot %s concurrently", s.ID(), from.ID()))
		}
		return nil
	}); err != nil {
		return TransferResult{}, err
	}

	if err = h.coordinator.Step(ctx, tc, "release-source", func() error {
		if err := from.Release(); err != nil {
			return err
		}
		ok, err := spots.UpdateIfStatus(ctx, from, spot.Occupied)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSourceNotOccupied.WithCause(fmt.Errorf("spot %s was freed concurrently", from.ID()))
		}
		return nil
	}); err != nil {
		return TransferResult{}, err
	}

	if err = h.coordinator.Step(ctx, tc, "occupy-destination", func() error {
		if err := to.Occupy(vehicleID); err != nil {
			return err
		}
		ok, err := spots.UpdateIfStatus(ctx, to, spot.Available)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDestinationNotAvailable.WithCause(fmt.Errorf("spot %s was taken concurrently", to.ID()))
		}
		return nil
	}); err != nil {
		return TransferResult{}, err
	}

	if err = h.coordinator.Step(ctx, tc, "move-vehicle", func() error {
		v, err := vehicles.Get(ctx, vehicleID)
		if err != nil {
			return err
		}
		previous := v.CurrentSpot()
		if err = v.MoveTo(to.ID()); err != nil {
			return err
		}
		ok, err := vehicles.UpdateIfSpot(ctx, v, previous)
		if err != nil {
			return err
		}
		if !ok {
			return errs.NewTransientError(fmt.Sprintf("vehicle %s moved while transferring it", vehicleID))
		}
		return nil
	}); err != nil {
		return TransferResult{}, err
	}

	return TransferResult{Session: s, FromSpot: from, ToSpot: to, Reason: cmd.Reason()}, nil
}
