package commands

import (
	"context"
	"errors"
	"fmt"

	"parking/internal/core/application/txcoord"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/ports"
	"parking/internal/pkg/errs"
)

type RegisterSpotCommandHandler struct {
	coordinator *txcoord.Coordinator
}

func NewRegisterSpotCommandHandler(coordinator *txcoord.Coordinator) RegisterSpotCommandHandler {
	return RegisterSpotCommandHandler{coordinator: coordinator}
}

func (h *RegisterSpotCommandHandler) Handle(ctx context.Context, cmd RegisterSpotCommand) txcoord.Result[*spot.Spot] {
	if err := cmd.Validate(); err != nil {
		return txcoord.Rejected[*spot.Spot](err)
	}

	opts := txcoord.Options{Priority: txcoord.PriorityLow}.WithMetadata("operation", "register-spot")
	return txcoord.RunUnit(ctx, h.coordinator, opts,
		func(ctx context.Context, uow ports.UnitOfWork, _ *txcoord.TransactionContext) (*spot.Spot, error) {
			repo := uow.SpotRepository()

			_, err := repo.Get(ctx, cmd.SpotID())
			switch {
			case err == nil:
				return nil, ErrSpotAlreadyExists.WithCause(fmt.Errorf("spot %s", cmd.SpotID()))
			case !errors.Is(err, errs.ErrObjectNotFound):
				return nil, err
			}

			s, err := spot.NewSpot(cmd.SpotID())
			if err != nil {
				return nil, err
			}
			if err = repo.Add(ctx, s); err != nil {
				return nil, err
			}
			return s, nil
		})
}
