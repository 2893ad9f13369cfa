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
	"parking/internal/core/domain/services"
	"parking/internal/core/ports"
	"parking/internal/pkg/errs"
)

// ExitResult is the closed session, the freed spot and the fee charged.
type ExitResult struct {
	Session *session.Session
	Spot    *spot.Spot
	Fee     services.FeeBreakdown
}

// ExitCommandHandler checks a vehicle out. Of two concurrent exits for one
// plate exactly one completes the session; the other gets ErrNoActiveSession.
type ExitCommandHandler struct {
	coordinator *txcoord.Coordinator
	clock       kernel.Clock
	fees        ports.FeeCalculator
	publisher   ports.EventPublisher
	logger      *slog.Logger
}

// NewExitCommandHandler creates the handler. publisher may be nil.
func NewExitCommandHandler(
	coordinator *txcoord.Coordinator,
	clock kernel.Clock,
	fees ports.FeeCalculator,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ExitCommandHandler {
	return ExitCommandHandler{
		coordinator: coordinator,
		clock:       clock,
		fees:        fees,
		publisher:   publisher,
		logger:      loggerOrDefault(logger),
	}
}

func (h *ExitCommandHandler) Handle(ctx context.Context, cmd ExitCommand) txcoord.Result[ExitResult] {
	if err := cmd.Validate(); err != nil {
		return txcoord.Rejected[ExitResult](err)
	}

	opts := txcoord.Options{Priority: txcoord.PriorityHigh}.
		WithMetadata("operation", "exit").
		WithMetadata("license_plate", cmd.LicensePlate())

	result := txcoord.RunUnit(ctx, h.coordinator, opts,
		func(ctx context.Context, uow ports.UnitOfWork, tc *txcoord.TransactionContext) (ExitResult, error) {
			return h.exit(ctx, uow, tc, cmd)
		})

	if result.Success {
		s := result.Data.Session
		publishEvent(ctx, h.publisher, h.logger, ports.SessionEvent{
			Type:          ports.SessionExited,
			TransactionID: result.TransactionID,
			SessionID:     s.ID().String(),
			VehicleID:     s.VehicleID().String(),
			LicensePlate:  cmd.LicensePlate(),
			SpotID:        s.SpotID().String(),
			TotalFeeCents: s.TotalFeeCents(),
			OccurredAt:    *s.CheckOutTime(),
		})
	}
	return result
}

func (h *ExitCommandHandler) exit(
	ctx context.Context,
	uow ports.UnitOfWork,
	tc *txcoord.TransactionContext,
	cmd ExitCommand,
) (ExitResult, error) {
	spots := uow.SpotRepository()
	vehicles := uow.VehicleRepository()
	sessions := uow.SessionRepository()

	v, err := vehicles.FindByPlate(ctx, cmd.LicensePlate())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ExitResult{}, ErrVehicleNotFound.WithCause(err)
	}
	if err != nil {
		return ExitResult{}, err
	}

	s, err := sessions.FindActiveByVehicle(ctx, v.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ExitResult{}, ErrNoActiveSession.WithCause(err)
	}
	if err != nil {
		return ExitResult{}, err
	}

	checkOut := h.clock.Now()
	if at := cmd.ExitTime(); at != nil {
		checkOut = *at
	}
	elapsed, err := s.ElapsedUntil(checkOut)
	if err != nil {
		return ExitResult{}, err
	}
	fee, err := h.fees.Calculate(v.Type(), elapsed)
	if err != nil {
		return ExitResult{}, err
	}

	spotID := s.SpotID()
	if err = h.coordinator.Step(ctx, tc, "complete-session", func() error {
		if err := s.Complete(checkOut, fee.TotalCents); err != nil {
			return err
		}
		ok, err := sessions.UpdateIfStatus(ctx, s, session.Active, spotID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoActiveSession.WithCause(fmt.Errorf("session %s was closed concurrently", s.ID()))
		}
		return nil
	}); err != nil {
		return ExitResult{}, err
	}

	var freed *spot.Spot
	if err = h.coordinator.Step(ctx, tc, "release-spot", func() error {
		current, err := spots.Get(ctx, spotID)
		if err != nil {
			return err
		}
		if err = current.Release(); err != nil {
			return err
		}
		ok, err := spots.UpdateIfStatus(ctx, current, spot.Occupied)
		if err != nil {
			return err
		}
		if !ok {
			return errs.NewTransientError(fmt.Sprintf("spot %s changed while releasing it", spotID))
		}
		freed = current
		return nil
	}); err != nil {
		return ExitResult{}, err
	}

	if err = h.coordinator.Step(ctx, tc, "unlink-vehicle", func() error {
		previous := v.CurrentSpot()
		if previous == nil {
			return nil
		}
		if err := v.Leave(); err != nil {
			return err
		}
		ok, err := vehicles.UpdateIfSpot(ctx, v, previous)
		if err != nil {
			return err
		}
		if !ok {
			return errs.NewTransientError(fmt.Sprintf("vehicle %s moved while checking out", v.LicensePlate()))
		}
		return nil
	}); err != nil {
		return ExitResult{}, err
	}

	return ExitResult{Session: s, Spot: freed, Fee: fee}, nil
}
