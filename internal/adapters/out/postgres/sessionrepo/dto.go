// Package sessionrepo persists parking sessions with GORM.
package sessionrepo

import (
	"time"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/session"

	"github.com/google/uuid"
)

// SessionDTO is the row layout of the parking_sessions table. Partial unique
// indexes on spot_id and vehicle_id for ACTIVE rows are created by
// postgres.Migrate.
type SessionDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	VehicleID       uuid.UUID `gorm:"type:uuid;not null;index"`
	SpotID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Status          int       `gorm:"not null;index"`
	CheckInTime     time.Time `gorm:"not null"`
	ExpectedEnd     *time.Time
	CheckOutTime    *time.Time
	DurationMinutes *int
	TotalFeeCents   *int64
}

func (SessionDTO) TableName() string {
	return "parking_sessions"
}

func fromDomain(s *session.Session) SessionDTO {
	return SessionDTO{
		ID:              s.ID().Bytes(),
		VehicleID:       s.VehicleID().Bytes(),
		SpotID:          s.SpotID().Bytes(),
		Status:          int(s.Status()),
		CheckInTime:     s.CheckInTime().UTC(),
		ExpectedEnd:     utc(s.ExpectedEnd()),
		CheckOutTime:    utc(s.CheckOutTime()),
		DurationMinutes: s.DurationMinutes(),
		TotalFeeCents:   s.TotalFeeCents(),
	}
}

func toDomain(dto SessionDTO) (*session.Session, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	vehicleID, err := kernel.UUIDFromBytes(dto.VehicleID[:])
	if err != nil {
		return nil, err
	}
	spotID, err := kernel.UUIDFromBytes(dto.SpotID[:])
	if err != nil {
		return nil, err
	}

	return session.RestoreSession(session.RestoreParams{
		ID:              id,
		VehicleID:       vehicleID,
		SpotID:          spotID,
		Status:          session.Status(dto.Status),
		CheckInTime:     dto.CheckInTime.UTC(),
		ExpectedEnd:     utc(dto.ExpectedEnd),
		CheckOutTime:    utc(dto.CheckOutTime),
		DurationMinutes: dto.DurationMinutes,
		TotalFeeCents:   dto.TotalFeeCents,
	})
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
