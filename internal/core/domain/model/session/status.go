package session

import (
	"fmt"
	"strings"

	"parking/internal/pkg/errs"
)

// Status is the lifecycle state of a parking session.
//
//	ACTIVE ──Complete──> COMPLETED
//
// CANCELLED and EXPIRED are terminal states written by administrative
// tooling. Only ACTIVE sessions hold a spot.
type Status int

const (
	Unknown Status = iota
	Active
	Completed
	Cancelled
	Expired
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "UNKNOWN",
		Active:    "ACTIVE",
		Completed: "COMPLETED",
		Cancelled: "CANCELLED",
		Expired:   "EXPIRED",
	}
}

func (s Status) Validate() error {
	if s <= Unknown || s > Expired {
		return errs.NewValueIsInvalidErrorWithCause("session status", fmt.Errorf("%d is not a valid session status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStatus converts the wire name of a status, case-insensitively.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for status, name := range getStatusStrings() {
		if status != Unknown && name == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("session status", fmt.Errorf("%q is not a valid session status", s))
}

func (s *Status) UnmarshalText(data []byte) error {
	parsed, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
