package http

import (
	"time"

	"parking/internal/core/application/usecases/commands"
	"parking/internal/core/application/usecases/queries"
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/session"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/domain/model/vehicle"
	"parking/internal/core/domain/services"
)

type SpotView struct {
	ID               kernel.UUID  `json:"id"`
	Status           spot.Status  `json:"status"`
	CurrentVehicleID *kernel.UUID `json:"currentVehicleId,omitempty"`
}

type VehicleView struct {
	ID            kernel.UUID  `json:"id"`
	LicensePlate  string       `json:"licensePlate"`
	Type          vehicle.Type `json:"type"`
	CurrentSpotID *kernel.UUID `json:"currentSpotId,omitempty"`
}

type SessionView struct {
	ID              kernel.UUID    `json:"id"`
	VehicleID       kernel.UUID    `json:"vehicleId"`
	SpotID          kernel.UUID    `json:"spotId"`
	Status          session.Status `json:"status"`
	CheckInTime     time.Time      `json:"checkInTime"`
	ExpectedEnd     *time.Time     `json:"expectedEnd,omitempty"`
	CheckOutTime    *time.Time     `json:"checkOutTime,omitempty"`
	DurationMinutes *int           `json:"durationMinutes,omitempty"`
	TotalFeeCents   *int64         `json:"totalFeeCents,omitempty"`
}

type ParkView struct {
	Session SessionView `json:"session"`
	Spot    SpotView    `json:"spot"`
	Vehicle VehicleView `json:"vehicle"`
}

type ExitView struct {
	Session SessionView           `json:"session"`
	Spot    SpotView              `json:"spot"`
	Fee     services.FeeBreakdown `json:"fee"`
}

type TransferView struct {
	Session  SessionView `json:"session"`
	FromSpot SpotView    `json:"fromSpot"`
	ToSpot   SpotView    `json:"toSpot"`
	Reason   string      `json:"reason,omitempty"`
}

type BulkUpdateView struct {
	UpdatedCount int        `json:"updatedCount"`
	Spots        []SpotView `json:"spots"`
}

type SpotDetailsView struct {
	Spot          SpotView     `json:"spot"`
	ActiveSession *SessionView `json:"activeSession,omitempty"`
}

type AvailabilityView struct {
	SpotID        kernel.UUID   `json:"spotId"`
	SpotStatus    spot.Status   `json:"spotStatus"`
	Available     bool          `json:"available"`
	Conflicts     []SessionView `json:"conflicts"`
	NextAvailable *time.Time    `json:"nextAvailable,omitempty"`
}

func spotView(s *spot.Spot) SpotView {
	return SpotView{
		ID:               s.ID(),
		Status:           s.Status(),
		CurrentVehicleID: s.CurrentVehicle(),
	}
}

func vehicleView(v *vehicle.Vehicle) VehicleView {
	return VehicleView{
		ID:            v.ID(),
		LicensePlate:  v.LicensePlate(),
		Type:          v.Type(),
		CurrentSpotID: v.CurrentSpot(),
	}
}

func sessionView(s *session.Session) SessionView {
	return SessionView{
		ID:              s.ID(),
		VehicleID:       s.VehicleID(),
		SpotID:          s.SpotID(),
		Status:          s.Status(),
		CheckInTime:     s.CheckInTime(),
		ExpectedEnd:     s.ExpectedEnd(),
		CheckOutTime:    s.CheckOutTime(),
		DurationMinutes: s.DurationMinutes(),
		TotalFeeCents:   s.TotalFeeCents(),
	}
}

func sessionViews(sessions []*session.Session) []SessionView {
	views := make([]SessionView, len(sessions))
	for i, s := range sessions {
		views[i] = sessionView(s)
	}
	return views
}

func parkView(r commands.ParkResult) any {
	return ParkView{
		Session: sessionView(r.Session),
		Spot:    spotView(r.Spot),
		Vehicle: vehicleView(r.Vehicle),
	}
}

func exitView(r commands.ExitResult) any {
	return ExitView{
		Session: sessionView(r.Session),
		Spot:    spotView(r.Spot),
		Fee:     r.Fee,
	}
}

func transferView(r commands.TransferResult) any {
	return TransferView{
		Session:  sessionView(r.Session),
		FromSpot: spotView(r.FromSpot),
		ToSpot:   spotView(r.ToSpot),
		Reason:   r.Reason,
	}
}

func bulkUpdateView(r commands.BulkUpdateResult) any {
	spots := make([]SpotView, len(r.Spots))
	for i, s := range r.Spots {
		spots[i] = spotView(s)
	}
	return BulkUpdateView{UpdatedCount: r.UpdatedCount, Spots: spots}
}

func spotDetailsView(r queries.GetSpotResponse) any {
	view := SpotDetailsView{Spot: spotView(r.Spot)}
	if r.ActiveSession != nil {
		active := sessionView(r.ActiveSession)
		view.ActiveSession = &active
	}
	return view
}

func availabilityView(spotID kernel.UUID) func(queries.CheckAvailabilityResponse) any {
	return func(r queries.CheckAvailabilityResponse) any {
		return AvailabilityView{
			SpotID:        spotID,
			SpotStatus:    r.SpotStatus,
			Available:     r.Available,
			Conflicts:     sessionViews(r.Conflicts),
			NextAvailable: r.NextAvailable,
		}
	}
}
