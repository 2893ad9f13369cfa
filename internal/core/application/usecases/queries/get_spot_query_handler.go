package queries

import (
	"context"
	"errors"

	"parking/internal/core/application/txcoord"
	"parking/internal/core/domain/model/session"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/ports"
	"parking/internal/pkg/errs"
)

type GetSpotResponse struct {
	Spot          *spot.Spot
	ActiveSession *session.Session
}

type GetSpotQueryHandler struct {
	coordinator *txcoord.Coordinator
}

func NewGetSpotQueryHandler(coordinator *txcoord.Coordinator) GetSpotQueryHandler {
	return GetSpotQueryHandler{coordinator: coordinator}
}

func (h GetSpotQueryHandler) Handle(ctx context.Context, query GetSpotQuery) txcoord.Result[GetSpotResponse] {
	if err := query.Validate(); err != nil {
		return txcoord.Rejected[GetSpotResponse](err)
	}

	opts := txcoord.Options{Priority: txcoord.PriorityLow}.WithMetadata("operation", "get-spot")
	return txcoord.RunUnit(ctx, h.coordinator, opts,
		func(ctx context.Context, uow ports.UnitOfWork, _ *txcoord.TransactionContext) (GetSpotResponse, error) {
			s, err := uow.SpotRepository().Get(ctx, query.SpotID())
			if err != nil {
				return GetSpotResponse{}, err
			}

			active, err := uow.SessionRepository().FindActiveBySpot(ctx, query.SpotID())
			if errors.Is(err, errs.ErrObjectNotFound) {
				return GetSpotResponse{Spot: s}, nil
			}
			if err != nil {
				return GetSpotResponse{}, err
			}
			return GetSpotResponse{Spot: s, ActiveSession: active}, nil
		})
}
