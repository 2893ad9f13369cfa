// Package queries contains read operations for retrieving system state.
// Reads run as units of work on the transaction coordinator so they observe a
// consistent snapshot and report the same uniform result as commands.
package queries

import (
	"errors"
	"time"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/pkg/errs"
	"parking/internal/pkg/guard"
)

var ErrCheckAvailabilityQueryIsNotConstructed = errors.New(
	"CheckAvailabilityQuery must be created via NewCheckAvailabilityQuery constructor",
)

// CheckAvailabilityQuery asks whether a spot is free during [start, end).
//
// Example:
//
//	query, err := NewCheckAvailabilityQuery(spotID, start, start.Add(2*time.Hour), nil)
//	if err != nil {
//	    return fmt.Errorf("invalid window: %w", err)
//	}
//	result := handler.Handle(ctx, query)
//	if result.Success && !result.Data.Available {
//	    fmt.Printf("next free at %v\n", result.Data.NextAvailable)
//	}
type CheckAvailabilityQuery struct { //nolint:recvcheck //using for validation
	spotID           kernel.UUID
	start            time.Time
	end              time.Time
	excludeSessionID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewCheckAvailabilityQuery(
	spotID kernel.UUID,
	start, end time.Time,
	excludeSessionID *kernel.UUID,
) (CheckAvailabilityQuery, error) {
	q := CheckAvailabilityQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		q.setSpotID(spotID),
		q.setWindow(start, end),
		q.setExcludeSessionID(excludeSessionID),
	); err != nil {
		return CheckAvailabilityQuery{}, err
	}

	return q, nil
}

func (q CheckAvailabilityQuery) Validate() error {
	return q.guard.Validate(ErrCheckAvailabilityQueryIsNotConstructed)
}

func (q CheckAvailabilityQuery) SpotID() kernel.UUID {
	return q.spotID
}

func (q CheckAvailabilityQuery) Start() time.Time {
	return q.start
}

func (q CheckAvailabilityQuery) End() time.Time {
	return q.end
}

func (q CheckAvailabilityQuery) ExcludeSessionID() *kernel.UUID {
	if q.excludeSessionID == nil {
		return nil
	}
	id := *q.excludeSessionID
	return &id
}

func (q *CheckAvailabilityQuery) setSpotID(spotID kernel.UUID) error {
	if err := spotID.Validate(); err != nil {
		return err
	}
	q.spotID = spotID
	return nil
}

func (q *CheckAvailabilityQuery) setWindow(start, end time.Time) error {
	if start.IsZero() {
		return errs.NewValueIsRequiredError("start")
	}
	if end.IsZero() {
		return errs.NewValueIsRequiredError("end")
	}
	if !start.Before(end) {
		return errs.NewValueIsInvalidErrorWithCause("end", errors.New("end must be after start"))
	}
	q.start = start
	q.end = end
	return nil
}

func (q *CheckAvailabilityQuery) setExcludeSessionID(id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return err
	}
	excluded := *id
	q.excludeSessionID = &excluded
	return nil
}
