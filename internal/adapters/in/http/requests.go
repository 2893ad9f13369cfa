package http

import "time"

type RegisterSpotRequest struct {
	// ID is optional; a new id is generated when empty.
	ID string `json:"id"`
}

type ParkRequest struct {
	SpotID       string     `json:"spotId"`
	LicensePlate string     `json:"licensePlate"`
	VehicleType  string     `json:"vehicleType"`
	ExpectedEnd  *time.Time `json:"expectedEnd"`
}

type ExitRequest struct {
	LicensePlate string     `json:"licensePlate"`
	ExitTime     *time.Time `json:"exitTime"`
}

type TransferRequest struct {
	FromSpotID string `json:"fromSpotId"`
	ToSpotID   string `json:"toSpotId"`
	Reason     string `json:"reason"`
}

type BulkUpdateSpotStatusRequest struct {
	SpotIDs []string `json:"spotIds"`
	Status  string   `json:"status"`
	Reason  string   `json:"reason"`
}
