package postgres

import (
	"fmt"

	"parking/internal/adapters/out/postgres/sessionrepo"
	"parking/internal/adapters/out/postgres/spotrepo"
	"parking/internal/adapters/out/postgres/vehiclerepo"
	"parking/internal/core/domain/model/session"

	"gorm.io/gorm"
)

// Migrate creates or updates the schema. Besides the tables it adds partial
// unique indexes so that at most one ACTIVE session exists per spot and per
// vehicle even if application-level checks race.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&spotrepo.SpotDTO{}, &vehiclerepo.VehicleDTO{}, &sessionrepo.SessionDTO{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	active := int(session.Active)
	statements := []string{
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS ux_parking_sessions_active_spot
			ON parking_sessions (spot_id) WHERE status = %d`, active),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS ux_parking_sessions_active_vehicle
			ON parking_sessions (vehicle_id) WHERE status = %d`, active),
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial index: %w", err)
		}
	}
	return nil
}
