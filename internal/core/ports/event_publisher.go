package ports

import (
	"context"
	"time"
)

// SessionEventType names what happened to a parking session.
type SessionEventType string

const (
	SessionParked      SessionEventType = "PARKED"
	SessionExited      SessionEventType = "EXITED"
	SessionTransferred SessionEventType = "TRANSFERRED"
)

// SessionEvent is published after a park, exit or transfer commits.
type SessionEvent struct {
	Type          SessionEventType `json:"type"`
	TransactionID string           `json:"transactionId"`
	SessionID     string           `json:"sessionId"`
	VehicleID     string           `json:"vehicleId"`
	LicensePlate  string           `json:"licensePlate,omitempty"`
	SpotID        string           `json:"spotId"`
	FromSpotID    string           `json:"fromSpotId,omitempty"`
	TotalFeeCents *int64           `json:"totalFeeCents,omitempty"`
	OccurredAt    time.Time        `json:"occurredAt"`
}

// EventPublisher delivers session events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event SessionEvent) error
}
