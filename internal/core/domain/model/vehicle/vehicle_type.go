package vehicle

import (
	"fmt"
	"strings"

	"parking/internal/pkg/errs"
)

// Type is the vehicle category used for billing.
type Type int

const (
	UnknownType Type = iota
	Car
	Motorcycle
	Van
	Truck
	Electric
)

func getTypeStrings() map[Type]string {
	return map[Type]string{
		UnknownType: "UNKNOWN",
		Car:         "CAR",
		Motorcycle:  "MOTORCYCLE",
		Van:         "VAN",
		Truck:       "TRUCK",
		Electric:    "ELECTRIC",
	}
}

// ParseType converts a type name, case-insensitively. An empty name means CAR.
func ParseType(s string) (Type, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if normalized == "" {
		return Car, nil
	}
	for t, name := range getTypeStrings() {
		if t != UnknownType && name == normalized {
			return t, nil
		}
	}
	return UnknownType, errs.NewValueIsInvalidErrorWithCause("vehicle type", fmt.Errorf("%q is not a valid vehicle type", s))
}

func (t Type) Validate() error {
	if t <= UnknownType || t > Electric {
		return errs.NewValueIsInvalidErrorWithCause("vehicle type", fmt.Errorf("%d is not a valid vehicle type", t))
	}
	return nil
}

func (t Type) String() string {
	if str, ok := getTypeStrings()[t]; ok {
		return str
	}
	return "UNKNOWN"
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(data []byte) error {
	parsed, err := ParseType(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
