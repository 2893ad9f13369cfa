package queries

import (
	"context"
	"time"

	"parking/internal/core/application/txcoord"
	"parking/internal/core/domain/model/session"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/domain/services"
	"parking/internal/core/ports"
)

// CheckAvailabilityResponse reports interval conflicts for a spot. Available
// only considers time windows; SpotStatus tells whether the spot is usable
// at all right now.
type CheckAvailabilityResponse struct {
	SpotStatus    spot.Status
	Available     bool
	Conflicts     []*session.Session
	NextAvailable *time.Time
}

type CheckAvailabilityQueryHandler struct {
	coordinator *txcoord.Coordinator
	checker     services.AvailabilityChecker
}

func NewCheckAvailabilityQueryHandler(
	coordinator *txcoord.Coordinator,
	checker services.AvailabilityChecker,
) CheckAvailabilityQueryHandler {
	return CheckAvailabilityQueryHandler{
		coordinator: coordinator,
		checker:     checker,
	}
}

// Handle loads the spot's active sessions and runs the interval check on them.
// An unknown spot fails with *errs.ObjectNotFoundError.
func (h CheckAvailabilityQueryHandler) Handle(
	ctx context.Context,
	query CheckAvailabilityQuery,
) txcoord.Result[CheckAvailabilityResponse] {
	if err := query.Validate(); err != nil {
		return txcoord.Rejected[CheckAvailabilityResponse](err)
	}

	opts := txcoord.Options{Priority: txcoord.PriorityLow}.
		WithMetadata("operation", "check-availability").
		WithMetadata("spot_id", query.SpotID().String())

	return txcoord.RunUnit(ctx, h.coordinator, opts,
		func(ctx context.Context, uow ports.UnitOfWork, _ *txcoord.TransactionContext) (CheckAvailabilityResponse, error) {
			s, err := uow.SpotRepository().Get(ctx, query.SpotID())
			if err != nil {
				return CheckAvailabilityResponse{}, err
			}

			candidates, err := uow.SessionRepository().ListActiveBySpot(ctx, query.SpotID())
			if err != nil {
				return CheckAvailabilityResponse{}, err
			}

			availability, err := h.checker.Check(
				candidates, query.SpotID(), query.Start(), query.End(), query.ExcludeSessionID(),
			)
			if err != nil {
				return CheckAvailabilityResponse{}, err
			}

			return CheckAvailabilityResponse{
				SpotStatus:    s.Status(),
				Available:     availability.Available,
				Conflicts:     availability.Conflicts,
				NextAvailable: availability.NextAvailable,
			}, nil
		})
}
