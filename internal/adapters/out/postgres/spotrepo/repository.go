package spotrepo

import (
	"context"
	"errors"

	"parking/internal/adapters/out/postgres/pgerr"
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/spot"
	"parking/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormSpotRepository implements ports.SpotRepository using GORM.
type GormSpotRepository struct {
	db *gorm.DB
}

// NewGormSpotRepository creates a repository bound to db, which is usually
// the transaction handle of a unit of work.
func NewGormSpotRepository(db *gorm.DB) *GormSpotRepository {
	return &GormSpotRepository{db: db}
}

// Add inserts a new spot.
func (r *GormSpotRepository) Add(ctx context.Context, s *spot.Spot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dto := fromDomain(s)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate("insert spot", err)
	}
	return nil
}

// Get loads a spot by ID.
func (r *GormSpotRepository) Get(ctx context.Context, id kernel.UUID) (*spot.Spot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto SpotDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("spot", id)
		}
		return nil, pgerr.Translate("select spot", err)
	}

	return toDomain(dto)
}

// UpdateIfStatus writes s only while the stored status still equals
// expected. A false result means another transaction got there first.
func (r *GormSpotRepository) UpdateIfStatus(ctx context.Context, s *spot.Spot, expected spot.Status) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}

	dto := fromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&SpotDTO{}).
		Where("id = ? AND status = ?", dto.ID, int(expected)).
		Select("status", "vehicle_id").
		Updates(&dto)
	if result.Error != nil {
		return false, pgerr.Translate("update spot", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// Delete removes a spot.
func (r *GormSpotRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&SpotDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return pgerr.Translate("delete spot", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("spot", id)
	}
	return nil
}
