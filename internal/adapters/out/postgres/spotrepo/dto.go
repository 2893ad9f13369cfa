// Package spotrepo persists parking spots with GORM.
package spotrepo

import (
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/spot"

	"github.com/google/uuid"
)

// SpotDTO is the row layout of the spots table.
type SpotDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Status    int        `gorm:"not null;index"`
	VehicleID *uuid.UUID `gorm:"type:uuid"`
}

func (SpotDTO) TableName() string {
	return "spots"
}

func fromDomain(s *spot.Spot) SpotDTO {
	var vehicleID *uuid.UUID
	if id := s.CurrentVehicle(); id != nil {
		raw := id.Bytes()
		vehicleID = &raw
	}

	return SpotDTO{
		ID:        s.ID().Bytes(),
		Status:    int(s.Status()),
		VehicleID: vehicleID,
	}
}

func toDomain(dto SpotDTO) (*spot.Spot, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var vehicleID *kernel.UUID
	if dto.VehicleID != nil {
		vID, vehicleErr := kernel.UUIDFromBytes(dto.VehicleID[:])
		if vehicleErr != nil {
			return nil, vehicleErr
		}
		vehicleID = &vID
	}

	return spot.RestoreSpot(id, spot.Status(dto.Status), vehicleID)
}
