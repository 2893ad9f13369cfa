package ports

import (
	"context"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/session"
)

// SessionRepository persists parking sessions.
type SessionRepository interface {
	Add(ctx context.Context, s *session.Session) error

	Get(ctx context.Context, id kernel.UUID) (*session.Session, error)

	// FindActiveByVehicle returns the vehicle's ACTIVE session or
	// *errs.ObjectNotFoundError.
	FindActiveByVehicle(ctx context.Context, vehicleID kernel.UUID) (*session.Session, error)

	// FindActiveBySpot returns the ACTIVE session on the spot or
	// *errs.ObjectNotFoundError.
	FindActiveBySpot(ctx context.Context, spotID kernel.UUID) (*session.Session, error)

	// ListActiveBySpot returns every ACTIVE session referencing the spot,
	// ordered by check-in time.
	ListActiveBySpot(ctx context.Context, spotID kernel.UUID) ([]*session.Session, error)

	// UpdateIfStatus writes the session only if its stored status equals
	// expected and its stored spot equals expectedSpotID.
	UpdateIfStatus(
		ctx context.Context,
		s *session.Session,
		expected session.Status,
		expectedSpotID kernel.UUID,
	) (bool, error)

	Delete(ctx context.Context, id kernel.UUID) error
}
