package vehiclerepo

import (
	"context"
	"errors"

	"parking/internal/adapters/out/postgres/pgerr"
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/vehicle"
	"parking/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormVehicleRepository implements ports.VehicleRepository using GORM.
type GormVehicleRepository struct {
	db *gorm.DB
}

func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// Add inserts a vehicle. A plate collision with a concurrent insert surfaces
// as a transient error; the retried unit then finds the committed vehicle.
func (r *GormVehicleRepository) Add(ctx context.Context, v *vehicle.Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}

	dto := fromDomain(v)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate("insert vehicle", err)
	}
	return nil
}

func (r *GormVehicleRepository) Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto VehicleDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("vehicle", id)
		}
		return nil, pgerr.Translate("select vehicle", err)
	}

	return toDomain(dto)
}

func (r *GormVehicleRepository) FindByPlate(ctx context.Context, licensePlate string) (*vehicle.Vehicle, error) {
	plate, err := vehicle.NormalizePlate(licensePlate)
	if err != nil {
		return nil, err
	}

	var dto VehicleDTO
	if err := r.db.WithContext(ctx).First(&dto, "license_plate = ?", plate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("licensePlate", plate)
		}
		return nil, pgerr.Translate("select vehicle by plate", err)
	}

	return toDomain(dto)
}

// UpdateIfSpot writes v only while its stored spot reference equals
// expectedSpotID. A nil expectedSpotID matches an unparked vehicle.
func (r *GormVehicleRepository) UpdateIfSpot(
	ctx context.Context,
	v *vehicle.Vehicle,
	expectedSpotID *kernel.UUID,
) (bool, error) {
	if err := v.Validate(); err != nil {
		return false, err
	}

	dto := fromDomain(v)
	query := r.db.WithContext(ctx).Model(&VehicleDTO{}).Where("id = ?", dto.ID)
	if expectedSpotID == nil {
		query = query.Where("spot_id IS NULL")
	} else {
		query = query.Where("spot_id = ?", expectedSpotID.Bytes())
	}

	result := query.Select("license_plate", "type", "spot_id").Updates(&dto)
	if result.Error != nil {
		return false, pgerr.Translate("update vehicle", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *GormVehicleRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&VehicleDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return pgerr.Translate("delete vehicle", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("vehicle", id)
	}
	return nil
}
