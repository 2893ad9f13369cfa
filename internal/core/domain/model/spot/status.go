package spot

import (
	"fmt"
	"strings"

	"parking/internal/pkg/errs"
)

// Status is the occupancy state of a spot.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	Available
	Occupied
	Reserved
	Maintenance
	OutOfOrder
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:     "UNKNOWN",
		Available:   "AVAILABLE",
		Occupied:    "OCCUPIED",
		Reserved:    "RESERVED",
		Maintenance: "MAINTENANCE",
		OutOfOrder:  "OUT_OF_ORDER",
	}
}

// ParseStatus converts the persisted/wire name of a status, case-insensitively.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for status, name := range getStatusStrings() {
		if status != Unknown && name == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("spot status", fmt.Errorf("%q is not a valid spot status", s))
}

func (s Status) Validate() error {
	if s <= Unknown || s > OutOfOrder {
		return errs.NewValueIsInvalidErrorWithCause("spot status", fmt.Errorf("%d is not a valid spot status", s))
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

func (s *Status) UnmarshalText(data []byte) error {
	parsed, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
