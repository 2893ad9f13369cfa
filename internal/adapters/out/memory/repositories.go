package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/session"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/domain/model/vehicle"
	"parking/internal/pkg/errs"
)

type spotRepository struct {
	uow *UnitOfWork
}

func (r *spotRepository) Add(ctx context.Context, s *spot.Spot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return r.uow.with(ctx, func(st *state) error {
		if _, ok := st.spots[s.ID()]; ok {
			return fmt.Errorf("%w: spot %s", ErrDuplicateKey, s.ID())
		}
		st.spots[s.ID()] = spotToRecord(s)
		return nil
	})
}

func (r *spotRepository) Get(ctx context.Context, id kernel.UUID) (*spot.Spot, error) {
	var out *spot.Spot
	err := r.uow.with(ctx, func(st *state) error {
		rec, ok := st.spots[id]
		if !ok {
			return errs.NewObjectNotFoundError("spot", id)
		}
		var err error
		out, err = spot.RestoreSpot(rec.id, rec.status, rec.vehicleID)
		return err
	})
	return out, err
}

func (r *spotRepository) UpdateIfStatus(ctx context.Context, s *spot.Spot, expected spot.Status) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	updated := false
	err := r.uow.with(ctx, func(st *state) error {
		rec, ok := st.spots[s.ID()]
		if !ok || rec.status != expected {
			return nil
		}
		st.spots[s.ID()] = spotToRecord(s)
		updated = true
		return nil
	})
	return updated, err
}

func (r *spotRepository) Delete(ctx context.Context, id kernel.UUID) error {
	return r.uow.with(ctx, func(st *state) error {
		if _, ok := st.spots[id]; !ok {
			return errs.NewObjectNotFoundError("spot", id)
		}
		delete(st.spots, id)
		return nil
	})
}

type vehicleRepository struct {
	uow *UnitOfWork
}

func (r *vehicleRepository) Add(ctx context.Context, v *vehicle.Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}
	return r.uow.with(ctx, func(st *state) error {
		if _, ok := st.vehicles[v.ID()]; ok {
			return fmt.Errorf("%w: vehicle %s", ErrDuplicateKey, v.ID())
		}
		for _, rec := range st.vehicles {
			if rec.licensePlate == v.LicensePlate() {
				return fmt.Errorf("%w %q", ErrDuplicateLicensePlate, v.LicensePlate())
			}
		}
		st.vehicles[v.ID()] = vehicleToRecord(v)
		return nil
	})
}

func (r *vehicleRepository) Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error) {
	var out *vehicle.Vehicle
	err := r.uow.with(ctx, func(st *state) error {
		rec, ok := st.vehicles[id]
		if !ok {
			return errs.NewObjectNotFoundError("vehicle", id)
		}
		var err error
		out, err = recordToVehicle(rec)
		return err
	})
	return out, err
}

func (r *vehicleRepository) FindByPlate(ctx context.Context, licensePlate string) (*vehicle.Vehicle, error) {
	plate, err := vehicle.NormalizePlate(licensePlate)
	if err != nil {
		return nil, err
	}
	var out *vehicle.Vehicle
	err = r.uow.with(ctx, func(st *state) error {
		for _, rec := range st.vehicles {
			if rec.licensePlate == plate {
				var err error
				out, err = recordToVehicle(rec)
				return err
			}
		}
		return errs.NewObjectNotFoundError("licensePlate", plate)
	})
	return out, err
}

func (r *vehicleRepository) UpdateIfSpot(ctx context.Context, v *vehicle.Vehicle, expectedSpotID *kernel.UUID) (bool, error) {
	if err := v.Validate(); err != nil {
		return false, err
	}
	updated := false
	err := r.uow.with(ctx, func(st *state) error {
		rec, ok := st.vehicles[v.ID()]
		if !ok || !kernel.SameUUID(rec.spotID, expectedSpotID) {
			return nil
		}
		st.vehicles[v.ID()] = vehicleToRecord(v)
		updated = true
		return nil
	})
	return updated, err
}

func (r *vehicleRepository) Delete(ctx context.Context, id kernel.UUID) error {
	return r.uow.with(ctx, func(st *state) error {
		if _, ok := st.vehicles[id]; !ok {
			return errs.NewObjectNotFoundError("vehicle", id)
		}
		delete(st.vehicles, id)
		return nil
	})
}

type sessionRepository struct {
	uow *UnitOfWork
}

func (r *sessionRepository) Add(ctx context.Context, s *session.Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return r.uow.with(ctx, func(st *state) error {
		if _, ok := st.sessions[s.ID()]; ok {
			return fmt.Errorf("%w: session %s", ErrDuplicateKey, s.ID())
		}
		st.sessions[s.ID()] = sessionToRecord(s)
		return nil
	})
}

func (r *sessionRepository) Get(ctx context.Context, id kernel.UUID) (*session.Session, error) {
	var out *session.Session
	err := r.uow.with(ctx, func(st *state) error {
		rec, ok := st.sessions[id]
		if !ok {
			return errs.NewObjectNotFoundError("session", id)
		}
		var err error
		out, err = recordToSession(rec)
		return err
	})
	return out, err
}

func (r *sessionRepository) FindActiveByVehicle(ctx context.Context, vehicleID kernel.UUID) (*session.Session, error) {
	return r.findActive(ctx, "vehicle", vehicleID, func(rec sessionRecord) bool {
		return rec.vehicleID == vehicleID
	})
}

func (r *sessionRepository) FindActiveBySpot(ctx context.Context, spotID kernel.UUID) (*session.Session, error) {
	return r.findActive(ctx, "spot", spotID, func(rec sessionRecord) bool {
		return rec.spotID == spotID
	})
}

func (r *sessionRepository) findActive(
	ctx context.Context,
	param string,
	id kernel.UUID,
	match func(sessionRecord) bool,
) (*session.Session, error) {
	var out *session.Session
	err := r.uow.with(ctx, func(st *state) error {
		for _, rec := range st.sessions {
			if rec.status == session.Active && match(rec) {
				var err error
				out, err = recordToSession(rec)
				return err
			}
		}
		return errs.NewObjectNotFoundError("active session for "+param, id)
	})
	return out, err
}

func (r *sessionRepository) ListActiveBySpot(ctx context.Context, spotID kernel.UUID) ([]*session.Session, error) {
	var out []*session.Session
	err := r.uow.with(ctx, func(st *state) error {
		records := make([]sessionRecord, 0)
		for _, rec := range st.sessions {
			if rec.status == session.Active && rec.spotID == spotID {
				records = append(records, rec)
			}
		}
		slices.SortFunc(records, func(a, b sessionRecord) int {
			if c := a.checkInTime.Compare(b.checkInTime); c != 0 {
				return c
			}
			return strings.Compare(a.id.String(), b.id.String())
		})

		out = make([]*session.Session, 0, len(records))
		for _, rec := range records {
			s, err := recordToSession(rec)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		return nil
	})
	return out, err
}

func (r *sessionRepository) UpdateIfStatus(
	ctx context.Context,
	s *session.Session,
	expected session.Status,
	expectedSpotID kernel.UUID,
) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	updated := false
	err := r.uow.with(ctx, func(st *state) error {
		rec, ok := st.sessions[s.ID()]
		if !ok || rec.status != expected || rec.spotID != expectedSpotID {
			return nil
		}
		st.sessions[s.ID()] = sessionToRecord(s)
		updated = true
		return nil
	})
	return updated, err
}

func (r *sessionRepository) Delete(ctx context.Context, id kernel.UUID) error {
	return r.uow.with(ctx, func(st *state) error {
		if _, ok := st.sessions[id]; !ok {
			return errs.NewObjectNotFoundError("session", id)
		}
		delete(st.sessions, id)
		return nil
	})
}

func spotToRecord(s *spot.Spot) spotRecord {
	return spotRecord{
		id:        s.ID(),
		status:    s.Status(),
		vehicleID: s.CurrentVehicle(),
	}
}

func vehicleToRecord(v *vehicle.Vehicle) vehicleRecord {
	return vehicleRecord{
		id:           v.ID(),
		licensePlate: v.LicensePlate(),
		vehicleType:  v.Type(),
		spotID:       v.CurrentSpot(),
	}
}

func recordToVehicle(rec vehicleRecord) (*vehicle.Vehicle, error) {
	return vehicle.RestoreVehicle(rec.id, rec.licensePlate, rec.vehicleType, rec.spotID)
}

func sessionToRecord(s *session.Session) sessionRecord {
	return sessionRecord{
		id:              s.ID(),
		vehicleID:       s.VehicleID(),
		spotID:          s.SpotID(),
		status:          s.Status(),
		checkInTime:     s.CheckInTime(),
		expectedEnd:     s.ExpectedEnd(),
		checkOutTime:    s.CheckOutTime(),
		durationMinutes: s.DurationMinutes(),
		totalFeeCents:   s.TotalFeeCents(),
	}
}

func recordToSession(rec sessionRecord) (*session.Session, error) {
	return session.RestoreSession(session.RestoreParams{
		ID:              rec.id,
		VehicleID:       rec.vehicleID,
		SpotID:          rec.spotID,
		Status:          rec.status,
		CheckInTime:     rec.checkInTime,
		ExpectedEnd:     rec.expectedEnd,
		CheckOutTime:    rec.checkOutTime,
		DurationMinutes: rec.durationMinutes,
		TotalFeeCents:   rec.totalFeeCents,
	})
}
