// Package vehiclerepo persists vehicles with GORM. License plates carry a
// unique index, so two transactions registering the same plate cannot both
// commit.
package vehiclerepo

import (
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/vehicle"

	"github.com/google/uuid"
)

// VehicleDTO is the row layout of the vehicles table.
type VehicleDTO struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LicensePlate string     `gorm:"not null;uniqueIndex"`
	Type         int        `gorm:"not null"`
	SpotID       *uuid.UUID `gorm:"type:uuid;index"`
}

func (VehicleDTO) TableName() string {
	return "vehicles"
}

func fromDomain(v *vehicle.Vehicle) VehicleDTO {
	var spotID *uuid.UUID
	if id := v.CurrentSpot(); id != nil {
		raw := id.Bytes()
		spotID = &raw
	}

	return VehicleDTO{
		ID:           v.ID().Bytes(),
		LicensePlate: v.LicensePlate(),
		Type:         int(v.Type()),
		SpotID:       spotID,
	}
}

func toDomain(dto VehicleDTO) (*vehicle.Vehicle, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var spotID *kernel.UUID
	if dto.SpotID != nil {
		sID, spotErr := kernel.UUIDFromBytes(dto.SpotID[:])
		if spotErr != nil {
			return nil, spotErr
		}
		spotID = &sID
	}

	return vehicle.RestoreVehicle(id, dto.LicensePlate, vehicle.Type(dto.Type), spotID)
}
