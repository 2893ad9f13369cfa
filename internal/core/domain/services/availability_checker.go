package services

import (
	"errors"
	"time"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/session"
	"parking/internal/pkg/errs"
)

// Availability is the outcome of an interval check for one spot.
// NextAvailable is nil when the window is free, or when some conflicting
// session is open-ended and no end can be computed.
type Availability struct {
	Available     bool
	Conflicts     []*session.Session
	NextAvailable *time.Time
}

// AvailabilityChecker decides whether a spot is free during a half-open window
// [start, end). A session covers [checkIn, End()) where a nil End() extends to
// infinity. Windows that merely touch at an endpoint do not conflict.
type AvailabilityChecker struct{}

func NewAvailabilityChecker() AvailabilityChecker {
	return AvailabilityChecker{}
}

// Check evaluates candidates against the window. Only ACTIVE sessions on spotID
// are considered; excludeSessionID, when set, is skipped so a session can be
// checked against everyone but itself.
func (AvailabilityChecker) Check(
	candidates []*session.Session,
	spotID kernel.UUID,
	start, end time.Time,
	excludeSessionID *kernel.UUID,
) (Availability, error) {
	if err := spotID.Validate(); err != nil {
		return Availability{}, err
	}
	if start.IsZero() || end.IsZero() {
		return Availability{}, errs.NewValueIsRequiredError("availability window")
	}
	if !start.Before(end) {
		return Availability{}, errs.NewValueIsInvalidErrorWithCause(
			"availability window", errors.New("start must be before end"))
	}

	var (
		conflicts []*session.Session
		nextFree  *time.Time
		openEnded bool
	)
	for _, candidate := range candidates {
		if !overlaps(candidate, spotID, start, end, excludeSessionID) {
			continue
		}
		conflicts = append(conflicts, candidate)

		candidateEnd := candidate.End()
		if candidateEnd == nil {
			openEnded = true
			continue
		}
		if candidateEnd.Before(start) {
			continue
		}
		if nextFree == nil || candidateEnd.Before(*nextFree) {
			nextFree = candidateEnd
		}
	}

	if len(conflicts) == 0 {
		return Availability{Available: true, Conflicts: []*session.Session{}}, nil
	}
	if openEnded {
		nextFree = nil
	}
	return Availability{
		Available:     false,
		Conflicts:     conflicts,
		NextAvailable: nextFree,
	}, nil
}

func overlaps(s *session.Session, spotID kernel.UUID, start, end time.Time, exclude *kernel.UUID) bool {
	if s == nil || !s.IsActive() || !s.SpotID().IsEqual(spotID) {
		return false
	}
	if exclude != nil && s.ID().IsEqual(*exclude) {
		return false
	}
	if !s.CheckInTime().Before(end) {
		return false
	}
	sessionEnd := s.End()
	return sessionEnd == nil || sessionEnd.After(start)
}
