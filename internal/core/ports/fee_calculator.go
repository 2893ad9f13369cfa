package ports

import (
	"time"

	"parking/internal/core/domain/model/vehicle"
	"parking/internal/core/domain/services"
)

// FeeCalculator prices a finished parking session.
type FeeCalculator interface {
	Calculate(vehicleType vehicle.Type, elapsed time.Duration) (services.FeeBreakdown, error)
}
