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
	"parking/internal/core/domain/model/vehicle"
	"parking/internal/core/ports"
	"parking/internal/pkg/errs"
)

// ParkResult is the state of the three entities after a successful park.
type ParkResult struct {
	Session *session.Session
	Spot    *spot.Spot
	Vehicle *vehicle.Vehicle
}

// ParkCommandHandler parks a vehicle on an AVAILABLE spot.
//
// Under N concurrent parks for the same spot exactly one commits. The others
// lose the conditional spot update and return ErrSpotNotAvailable.
type ParkCommandHandler struct {
	coordinator *txcoord.Coordinator
	clock       kernel.Clock
	publisher   ports.EventPublisher
	logger      *slog.Logger
}

// NewParkCommandHandler creates the handler. publisher may be nil.
func NewParkCommandHandler(
	coordinator *txcoord.Coordinator,
	clock kernel.Clock,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ParkCommandHandler {
	return ParkCommandHandler{
		coordinator: coordinator,
		clock:       clock,
		publisher:   publisher,
		logger:      loggerOrDefault(logger),
	}
}

func (h *ParkCommandHandler) Handle(ctx context.Context, cmd ParkCommand) txcoord.Result[ParkResult] {
	if err := cmd.Validate(); err != nil {
		return txcoord.Rejected[ParkResult](err)
	}

	opts := txcoord.Options{Priority: txcoord.PriorityHigh}.
		WithMetadata("operation", "park").
		WithMetadata("spot_id", cmd.SpotID().String())

	result := txcoord.RunUnit(ctx, h.coordinator, opts,
		func(ctx context.Context, uow ports.UnitOfWork, tc *txcoord.TransactionContext) (ParkResult, error) {
			return h.park(ctx, uow, tc, cmd)
		})

	if result.Success {
		publishEvent(ctx, h.publisher, h.logger, ports.SessionEvent{
			Type:          ports.SessionParked,
			TransactionID: result.TransactionID,
			SessionID:     result.Data.Session.ID().String(),
			VehicleID:     result.Data.Vehicle.ID().String(),
			LicensePlate:  result.Data.Vehicle.LicensePlate(),
			SpotID:        result.Data.Spot.ID().String(),
			OccurredAt:    result.Data.Session.CheckInTime(),
		})
	}
	return result
}

func (h *ParkCommandHandler) park(
	ctx context.Context,
	uow ports.UnitOfWork,
	tc *txcoord.TransactionContext,
	cmd ParkCommand,
) (ParkResult, error) {
	spots := uow.SpotRepository()
	vehicles := uow.VehicleRepository()
	sessions := uow.SessionRepository()

	target, err := spots.Get(ctx, cmd.SpotID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ParkResult{}, ErrSpotNotAvailable.WithCause(err)
	}
	if err != nil {
		return ParkResult{}, err
	}
	if !target.IsAvailable() {
		return ParkResult{}, ErrSpotNotAvailable.WithCause(
			fmt.Errorf("spot %s is %s", target.ID(), target.Status()),
		)
	}

	v, err := vehicles.FindByPlate(ctx, cmd.LicensePlate())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		v, err = vehicle.NewVehicle(kernel.NewUUID(), cmd.LicensePlate(), cmd.VehicleType())
		if err != nil {
			return ParkResult{}, err
		}
		if err = h.coordinator.Step(ctx, tc, "create-vehicle", func() error {
			return vehicles.Add(ctx, v)
		}); err != nil {
			return ParkResult{}, err
		}
	case err != nil:
		return ParkResult{}, err
	}

	active, err := sessions.FindActiveByVehicle(ctx, v.ID())
	switch {
	case err == nil:
		return ParkResult{}, ErrVehicleAlreadyParked.WithCause(
			fmt.Errorf("vehicle %s has session %s on spot %s", v.LicensePlate(), active.ID(), active.SpotID()),
		)
	case !errors.Is(err, errs.ErrObjectNotFound):
		return ParkResult{}, err
	}

	s, err := session.NewSession(kernel.NewUUID(), v.ID(), target.ID(), h.clock.Now(), cmd.ExpectedEnd())
	if err != nil {
		return ParkResult{}, err
	}
	if err = h.coordinator.Step(ctx, tc, "create-session", func() error {
		return sessions.Add(ctx, s)
	}); err != nil {
		return ParkResult{}, err
	}

	if err = h.coordinator.Step(ctx, tc, "occupy-spot", func() error {
		if err := target.Occupy(v.ID()); err != nil {
			return err
		}
		ok, err := spots.UpdateIfStatus(ctx, target, spot.Available)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSpotNotAvailable.WithCause(fmt.Errorf("spot %s was taken concurrently", target.ID()))
		}
		return nil
	}); err != nil {
		return ParkResult{}, err
	}

	if err = h.coordinator.Step(ctx, tc, "link-vehicle", func() error {
		if err := v.ParkAt(target.ID()); err != nil {
			return ErrVehicleAlreadyParked.WithCause(err)
		}
		ok, err := vehicles.UpdateIfSpot(ctx, v, nil)
		if err != nil {
			return err
		}
		if !ok {
			return ErrVehicleAlreadyParked.WithCause(
				fmt.Errorf("vehicle %s was parked concurrently", v.LicensePlate()),
			)
		}
		return nil
	}); err != nil {
		return ParkResult{}, err
	}

	return ParkResult{Session: s, Spot: target, Vehicle: v}, nil
}
