package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"parking/internal/core/application/txcoord"
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/ports"
	"parking/internal/pkg/errs"
)

const DefaultBulkBatchSize = 50

type BulkUpdateResult struct {
	UpdatedCount int
	Spots        []*spot.Spot
}

// BulkUpdateSpotStatusCommandHandler changes the status of many spots in one
// unit of work. Spots are processed in batches, each under its own savepoint,
// and any failure aborts the whole operation: no spot changes unless all do.
type BulkUpdateSpotStatusCommandHandler struct {
	coordinator *txcoord.Coordinator
	batchSize   int
	logger      *slog.Logger
}

// NewBulkUpdateSpotStatusCommandHandler creates the handler. A non-positive
// batchSize means DefaultBulkBatchSize.
func NewBulkUpdateSpotStatusCommandHandler(
	coordinator *txcoord.Coordinator,
	batchSize int,
	logger *slog.Logger,
) BulkUpdateSpotStatusCommandHandler {
	if batchSize <= 0 {
		batchSize = DefaultBulkBatchSize
	}
	return BulkUpdateSpotStatusCommandHandler{
		coordinator: coordinator,
		batchSize:   batchSize,
		logger:      loggerOrDefault(logger),
	}
}

func (h *BulkUpdateSpotStatusCommandHandler) Handle(
	ctx context.Context,
	cmd BulkUpdateSpotStatusCommand,
) txcoord.Result[BulkUpdateResult] {
	if err := cmd.Validate(); err != nil {
		return txcoord.Rejected[BulkUpdateResult](err)
	}

	ids := cmd.SpotIDs()
	opts := txcoord.Options{Priority: txcoord.PriorityLow}.
		WithMetadata("operation", "bulk-update-spot-status").
		WithMetadata("status", cmd.NewStatus().String()).
		WithMetadata("count", strconv.Itoa(len(ids)))
	if cmd.Reason() != "" {
		opts = opts.WithMetadata("reason", cmd.Reason())
	}

	return txcoord.RunUnit(ctx, h.coordinator, opts,
		func(ctx context.Context, uow ports.UnitOfWork, tc *txcoord.TransactionContext) (BulkUpdateResult, error) {
			updated := make([]*spot.Spot, 0, len(ids))
			for batch, start := 0, 0; start < len(ids); batch, start = batch+1, start+h.batchSize {
				end := min(start+h.batchSize, len(ids))

				var spots []*spot.Spot
				err := h.coordinator.Step(ctx, tc, fmt.Sprintf("bulk-batch-%d", batch), func() error {
					var err error
					spots, err = h.updateBatch(ctx, uow.SpotRepository(), ids[start:end], cmd.NewStatus())
					return err
				})
				if err != nil {
					h.logger.InfoContext(ctx, "bulk spot status update aborted",
						"transaction_id", tc.ID(),
						"batch", batch,
						"error", err,
					)
					return BulkUpdateResult{}, err
				}
				updated = append(updated, spots...)
			}
			return BulkUpdateResult{UpdatedCount: len(updated), Spots: updated}, nil
		})
}

func (h *BulkUpdateSpotStatusCommandHandler) updateBatch(
	ctx context.Context,
	repo ports.SpotRepository,
	ids []kernel.UUID,
	status spot.Status,
) ([]*spot.Spot, error) {
	out := make([]*spot.Spot, 0, len(ids))
	for _, id := range ids {
		s, err := repo.Get(ctx, id)
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil, ErrSpotNotFound.WithCause(err)
		}
		if err != nil {
			return nil, err
		}

		previous := s.Status()
		if err = s.ChangeStatus(status); err != nil {
			return nil, ErrStatusChangeRejected.WithCause(fmt.Errorf("spot %s: %w", id, err))
		}
		ok, err := repo.UpdateIfStatus(ctx, s, previous)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrStatusChangeRejected.WithCause(fmt.Errorf("spot %s changed concurrently", id))
		}
		out = append(out, s)
	}
	return out, nil
}
