// Package session models a parking session: the stay of one vehicle on one
// spot between check-in and check-out.
package session

import (
	"errors"
	"fmt"
	"time"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/pkg/errs"
)

var (
	ErrSessionIsNotConstructed = errors.New("Session must be created via NewSession or RestoreSession constructor")
	ErrSessionIsNotActive      = errors.New("session is not active")
)

type Session struct {
	id              kernel.UUID
	vehicleID       kernel.UUID
	spotID          kernel.UUID
	status          Status
	checkInTime     time.Time
	expectedEnd     *time.Time
	checkOutTime    *time.Time
	durationMinutes *int
	totalFeeCents   *int64

	isConstructed bool
}

// NewSession starts an ACTIVE session. expectedEnd is the announced departure,
// if any, and must not precede checkIn.
func NewSession(id, vehicleID, spotID kernel.UUID, checkIn time.Time, expectedEnd *time.Time) (*Session, error) {
	return RestoreSession(RestoreParams{
		ID:          id,
		VehicleID:   vehicleID,
		SpotID:      spotID,
		Status:      Active,
		CheckInTime: checkIn,
		ExpectedEnd: expectedEnd,
	})
}

// RestoreParams carries persisted session state.
type RestoreParams struct {
	ID              kernel.UUID
	VehicleID       kernel.UUID
	SpotID          kernel.UUID
	Status          Status
	CheckInTime     time.Time
	ExpectedEnd     *time.Time
	CheckOutTime    *time.Time
	DurationMinutes *int
	TotalFeeCents   *int64
}

func RestoreSession(p RestoreParams) (*Session, error) {
	if err := errors.Join(
		p.ID.Validate(),
		p.VehicleID.Validate(),
		p.SpotID.Validate(),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}
	if p.CheckInTime.IsZero() {
		return nil, errs.NewValueIsRequiredError("checkInTime")
	}
	if p.ExpectedEnd != nil && p.ExpectedEnd.Before(p.CheckInTime) {
		return nil, errs.NewValueIsInvalidErrorWithCause("expectedEnd", errors.New("expected end precedes check-in"))
	}
	if p.CheckOutTime != nil && p.CheckOutTime.Before(p.CheckInTime) {
		return nil, errs.NewValueIsInvalidErrorWithCause("checkOutTime", errors.New("check-out precedes check-in"))
	}

	return &Session{
		id:              p.ID,
		vehicleID:       p.VehicleID,
		spotID:          p.SpotID,
		status:          p.Status,
		checkInTime:     p.CheckInTime,
		expectedEnd:     copyTime(p.ExpectedEnd),
		checkOutTime:    copyTime(p.CheckOutTime),
		durationMinutes: copyInt(p.DurationMinutes),
		totalFeeCents:   copyInt64(p.TotalFeeCents),
		isConstructed:   true,
	}, nil
}

func (s *Session) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrSessionIsNotConstructed
	}
	return nil
}

func (s *Session) ID() kernel.UUID          { return s.id }
func (s *Session) VehicleID() kernel.UUID   { return s.vehicleID }
func (s *Session) SpotID() kernel.UUID      { return s.spotID }
func (s *Session) Status() Status           { return s.status }
func (s *Session) CheckInTime() time.Time   { return s.checkInTime }
func (s *Session) ExpectedEnd() *time.Time  { return copyTime(s.expectedEnd) }
func (s *Session) CheckOutTime() *time.Time { return copyTime(s.checkOutTime) }
func (s *Session) DurationMinutes() *int    { return copyInt(s.durationMinutes) }
func (s *Session) TotalFeeCents() *int64    { return copyInt64(s.totalFeeCents) }

func (s *Session) IsActive() bool {
	return s.status == Active
}

// End is the end of the interval the session covers: the check-out time once
// recorded, otherwise the expected end. Nil means open-ended.
func (s *Session) End() *time.Time {
	if s.checkOutTime != nil {
		return copyTime(s.checkOutTime)
	}
	return copyTime(s.expectedEnd)
}

// ElapsedUntil returns the parked duration up to at. It fails if at precedes check-in.
func (s *Session) ElapsedUntil(at time.Time) (time.Duration, error) {
	if at.Before(s.checkInTime) {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"exitTime",
			fmt.Errorf("%s precedes check-in %s", at.Format(time.RFC3339), s.checkInTime.Format(time.RFC3339)),
		)
	}
	return at.Sub(s.checkInTime), nil
}

// Complete closes an ACTIVE session at checkOut with the computed fee.
func (s *Session) Complete(checkOut time.Time, feeCents int64) error {
	if s.status != Active {
		return fmt.Errorf("%w: session %s is %s", ErrSessionIsNotActive, s.id, s.status)
	}
	elapsed, err := s.ElapsedUntil(checkOut)
	if err != nil {
		return err
	}
	if feeCents < 0 {
		return errs.NewValueIsOutOfRangeError("totalFee", feeCents, 0, "unbounded")
	}
	minutes := int(elapsed / time.Minute)
	s.status = Completed
	s.checkOutTime = &checkOut
	s.durationMinutes = &minutes
	s.totalFeeCents = &feeCents
	return nil
}

// MoveTo re-points an ACTIVE session at another spot.
func (s *Session) MoveTo(spotID kernel.UUID) error {
	if err := spotID.Validate(); err != nil {
		return err
	}
	if s.status != Active {
		return fmt.Errorf("%w: session %s is %s", ErrSessionIsNotActive, s.id, s.status)
	}
	s.spotID = spotID
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
