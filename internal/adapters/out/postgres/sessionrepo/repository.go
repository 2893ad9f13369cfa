package sessionrepo

import (
	"context"
	"errors"

	"parking/internal/adapters/out/postgres/pgerr"
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/session"
	"parking/internal/pkg/errs"

	"gorm.io/gorm"
)

var updatableColumns = []string{
	"vehicle_id",
	"spot_id",
	"status",
	"check_in_time",
	"expected_end",
	"check_out_time",
	"duration_minutes",
	"total_fee_cents",
}

// GormSessionRepository implements ports.SessionRepository using GORM.
type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Add inserts a session. A second ACTIVE session for the same spot or
// vehicle violates a partial unique index and is reported as transient.
func (r *GormSessionRepository) Add(ctx context.Context, s *session.Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dto := fromDomain(s)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate("insert session", err)
	}
	return nil
}

func (r *GormSessionRepository) Get(ctx context.Context, id kernel.UUID) (*session.Session, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto SessionDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("session", id)
		}
		return nil, pgerr.Translate("select session", err)
	}

	return toDomain(dto)
}

func (r *GormSessionRepository) FindActiveByVehicle(ctx context.Context, vehicleID kernel.UUID) (*session.Session, error) {
	return r.findActive(ctx, "vehicle", "vehicle_id", vehicleID)
}

func (r *GormSessionRepository) FindActiveBySpot(ctx context.Context, spotID kernel.UUID) (*session.Session, error) {
	return r.findActive(ctx, "spot", "spot_id", spotID)
}

func (r *GormSessionRepository) findActive(
	ctx context.Context,
	param, column string,
	id kernel.UUID,
) (*session.Session, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto SessionDTO
	err := r.db.WithContext(ctx).
		Where(column+" = ? AND status = ?", id.Bytes(), int(session.Active)).
		Order("check_in_time").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("active session for "+param, id)
		}
		return nil, pgerr.Translate("select active session", err)
	}

	return toDomain(dto)
}

// ListActiveBySpot returns the spot's ACTIVE sessions ordered by check-in.
func (r *GormSessionRepository) ListActiveBySpot(ctx context.Context, spotID kernel.UUID) ([]*session.Session, error) {
	if err := spotID.Validate(); err != nil {
		return nil, err
	}

	var dtos []SessionDTO
	err := r.db.WithContext(ctx).
		Where("spot_id = ? AND status = ?", spotID.Bytes(), int(session.Active)).
		Order("check_in_time, id").
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Translate("list active sessions", err)
	}

	sessions := make([]*session.Session, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// UpdateIfStatus writes s only while the stored row is still in status
// expected on spot expectedSpotID.
func (r *GormSessionRepository) UpdateIfStatus(
	ctx context.Context,
	s *session.Session,
	expected session.Status,
	expectedSpotID kernel.UUID,
) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}

	dto := fromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&SessionDTO{}).
		Where("id = ? AND status = ? AND spot_id = ?", dto.ID, int(expected), expectedSpotID.Bytes()).
		Select(updatableColumns).
		Updates(&dto)
	if result.Error != nil {
		return false, pgerr.Translate("update session", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *GormSessionRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&SessionDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return pgerr.Translate("delete session", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("session", id)
	}
	return nil
}
