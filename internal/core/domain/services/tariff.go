package services

import (
	"fmt"
	"time"

	"parking/internal/core/domain/model/vehicle"
	"parking/internal/pkg/errs"
)

const (
	// MinimumBillableMinutes is charged for any stay, however short.
	MinimumBillableMinutes = 30
	// BillingIncrementMinutes is the granularity billable time is rounded up to.
	BillingIncrementMinutes = 30
)

// FeeBreakdown explains how a session fee was computed. Amounts are in cents.
type FeeBreakdown struct {
	VehicleType     vehicle.Type `json:"vehicleType"`
	HourlyRateCents int64        `json:"hourlyRateCents"`
	DurationMinutes int          `json:"durationMinutes"`
	BillableMinutes int          `json:"billableMinutes"`
	TotalCents      int64        `json:"totalCents"`
}

// DefaultHourlyRates returns the standard per-type hourly rates in cents.
func DefaultHourlyRates() map[vehicle.Type]int64 {
	return map[vehicle.Type]int64{
		vehicle.Car:        500,
		vehicle.Motorcycle: 300,
		vehicle.Van:        700,
		vehicle.Truck:      1000,
		vehicle.Electric:   450,
	}
}

// TariffCalculator bills a stay at an hourly rate that depends on the vehicle
// type. Billable time is the elapsed time rounded up to the next half hour,
// with a half-hour minimum.
//
// Example:
//
//	calc := services.NewTariffCalculator(nil)
//	fee, _ := calc.Calculate(vehicle.Car, 95*time.Minute)
//	// fee.BillableMinutes == 120, fee.TotalCents == 1000
type TariffCalculator struct {
	rates map[vehicle.Type]int64
}

// NewTariffCalculator uses rates, or DefaultHourlyRates when rates is nil.
func NewTariffCalculator(rates map[vehicle.Type]int64) TariffCalculator {
	if rates == nil {
		rates = DefaultHourlyRates()
	}
	copied := make(map[vehicle.Type]int64, len(rates))
	for t, r := range rates {
		copied[t] = r
	}
	return TariffCalculator{rates: copied}
}

// Calculate returns the fee for a stay of elapsed duration.
func (c TariffCalculator) Calculate(vehicleType vehicle.Type, elapsed time.Duration) (FeeBreakdown, error) {
	if err := vehicleType.Validate(); err != nil {
		return FeeBreakdown{}, err
	}
	if elapsed < 0 {
		return FeeBreakdown{}, errs.NewValueIsOutOfRangeError("elapsed", elapsed, 0, "unbounded")
	}
	rate, ok := c.rates[vehicleType]
	if !ok {
		return FeeBreakdown{}, errs.NewValueIsInvalidErrorWithCause(
			"vehicle type", fmt.Errorf("no hourly rate configured for %s", vehicleType))
	}

	startedMinutes := int((elapsed + time.Minute - 1) / time.Minute)
	billable := roundUp(startedMinutes, BillingIncrementMinutes)
	if billable < MinimumBillableMinutes {
		billable = MinimumBillableMinutes
	}

	return FeeBreakdown{
		VehicleType:     vehicleType,
		HourlyRateCents: rate,
		DurationMinutes: int(elapsed / time.Minute),
		BillableMinutes: billable,
		TotalCents:      (rate*int64(billable) + 59) / 60,
	}, nil
}

func roundUp(value, step int) int {
	if value%step == 0 {
		return value
	}
	return (value/step + 1) * step
}
