package vehicle_test

import (
	"strings"
	"testing"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/vehicle"
	"parking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlate(t *testing.T) {
	testCases := []struct {
		input   string
		want    string
		wantErr error
	}{
		{input: "ab123cd", want: "AB123CD"},
		{input: "  ab  12 cd ", want: "AB 12 CD"},
		{input: "b-42-xy", want: "B-42-XY"},
		{input: "", wantErr: errs.ErrValueIsRequired},
		{input: "   ", wantErr: errs.ErrValueIsRequired},
		{input: "AB#12", wantErr: errs.ErrValueIsInvalid},
		{input: "-AB12", wantErr: errs.ErrValueIsInvalid},
		{input: strings.Repeat("A", 17), wantErr: errs.ErrValueIsOutOfRange},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := vehicle.NormalizePlate(tc.input)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewVehicle(t *testing.T) {
	id := kernel.NewUUID()

	v, err := vehicle.NewVehicle(id, "ab123", vehicle.Motorcycle)
	require.NoError(t, err)

	assert.Equal(t, id, v.ID())
	assert.Equal(t, "AB123", v.LicensePlate())
	assert.Equal(t, vehicle.Motorcycle, v.Type())
	assert.False(t, v.IsParked())

	_, err = vehicle.NewVehicle(kernel.UUID{}, "", vehicle.UnknownType)
	require.Error(t, err)
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestVehicle_ParkMoveLeave(t *testing.T) {
	v, err := vehicle.NewVehicle(kernel.NewUUID(), "AB123", vehicle.Car)
	require.NoError(t, err)
	first, second := kernel.NewUUID(), kernel.NewUUID()

	require.ErrorIs(t, v.Leave(), vehicle.ErrNotParked)
	require.ErrorIs(t, v.MoveTo(second), vehicle.ErrNotParked)

	require.NoError(t, v.ParkAt(first))
	assert.Equal(t, first, *v.CurrentSpot())
	require.ErrorIs(t, v.ParkAt(second), vehicle.ErrAlreadyParked)

	require.NoError(t, v.MoveTo(second))
	assert.Equal(t, second, *v.CurrentSpot())

	require.NoError(t, v.Leave())
	assert.Nil(t, v.CurrentSpot())
}

func TestParseType(t *testing.T) {
	got, err := vehicle.ParseType("")
	require.NoError(t, err)
	assert.Equal(t, vehicle.Car, got)

	got, err = vehicle.ParseType("electric")
	require.NoError(t, err)
	assert.Equal(t, vehicle.Electric, got)

	_, err = vehicle.ParseType("bicycle")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	require.Error(t, vehicle.UnknownType.Validate())
	assert.Equal(t, "TRUCK", vehicle.Truck.String())
}
