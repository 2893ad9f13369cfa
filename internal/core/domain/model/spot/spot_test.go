package spot_test

import (
	"testing"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/spot"
	"parking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpot(t *testing.T) {
	id := kernel.NewUUID()

	s, err := spot.NewSpot(id)
	require.NoError(t, err)

	assert.Equal(t, id, s.ID())
	assert.Equal(t, spot.Available, s.Status())
	assert.Nil(t, s.CurrentVehicle())
	require.NoError(t, s.Validate())

	_, err = spot.NewSpot(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestRestoreSpot(t *testing.T) {
	vehicleID := kernel.NewUUID()

	testCases := []struct {
		name      string
		status    spot.Status
		vehicleID *kernel.UUID
		wantErr   bool
	}{
		{name: "available without vehicle", status: spot.Available},
		{name: "occupied with vehicle", status: spot.Occupied, vehicleID: &vehicleID},
		{name: "maintenance without vehicle", status: spot.Maintenance},
		{name: "occupied without vehicle", status: spot.Occupied, wantErr: true},
		{name: "available with vehicle", status: spot.Available, vehicleID: &vehicleID, wantErr: true},
		{name: "unknown status", status: spot.Unknown, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := spot.RestoreSpot(kernel.NewUUID(), tc.status, tc.vehicleID)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.status, s.Status())
		})
	}
}

func TestSpot_OccupyAndRelease(t *testing.T) {
	s, err := spot.NewSpot(kernel.NewUUID())
	require.NoError(t, err)
	vehicleID := kernel.NewUUID()

	require.NoError(t, s.Occupy(vehicleID))
	assert.True(t, s.IsOccupied())
	require.NotNil(t, s.CurrentVehicle())
	assert.Equal(t, vehicleID, *s.CurrentVehicle())

	err = s.Occupy(kernel.NewUUID())
	require.ErrorIs(t, err, spot.ErrInvalidTransition)

	require.NoError(t, s.Release())
	assert.True(t, s.IsAvailable())
	assert.Nil(t, s.CurrentVehicle())

	require.ErrorIs(t, s.Release(), spot.ErrInvalidTransition)
}

func TestSpot_CurrentVehicleIsCopied(t *testing.T) {
	vehicleID := kernel.NewUUID()
	s, err := spot.RestoreSpot(kernel.NewUUID(), spot.Occupied, &vehicleID)
	require.NoError(t, err)

	ref := s.CurrentVehicle()
	*ref = kernel.NewUUID()

	assert.Equal(t, vehicleID, *s.CurrentVehicle())
}

func TestSpot_ChangeStatus(t *testing.T) {
	t.Run("available to maintenance and back", func(t *testing.T) {
		s, _ := spot.NewSpot(kernel.NewUUID())

		require.NoError(t, s.ChangeStatus(spot.Maintenance))
		assert.Equal(t, spot.Maintenance, s.Status())
		require.NoError(t, s.ChangeStatus(spot.Available))
	})

	t.Run("cannot set occupied", func(t *testing.T) {
		s, _ := spot.NewSpot(kernel.NewUUID())
		require.ErrorIs(t, s.ChangeStatus(spot.Occupied), spot.ErrInvalidTransition)
	})

	t.Run("cannot change occupied spot", func(t *testing.T) {
		s, _ := spot.NewSpot(kernel.NewUUID())
		require.NoError(t, s.Occupy(kernel.NewUUID()))
		require.ErrorIs(t, s.ChangeStatus(spot.OutOfOrder), spot.ErrInvalidTransition)
	})

	t.Run("invalid status", func(t *testing.T) {
		s, _ := spot.NewSpot(kernel.NewUUID())
		require.ErrorIs(t, s.ChangeStatus(spot.Status(42)), errs.ErrValueIsInvalid)
	})
}

func TestSpot_ValidateZeroValue(t *testing.T) {
	var s *spot.Spot
	require.ErrorIs(t, s.Validate(), spot.ErrSpotIsNotConstructed)
	require.ErrorIs(t, (&spot.Spot{}).Validate(), spot.ErrSpotIsNotConstructed)
}

func TestParseStatus(t *testing.T) {
	for _, name := range []string{"AVAILABLE", "occupied", " Reserved ", "MAINTENANCE", "out_of_order"} {
		status, err := spot.ParseStatus(name)
		require.NoError(t, err, name)
		require.NoError(t, status.Validate())
	}

	_, err := spot.ParseStatus("UNKNOWN")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = spot.ParseStatus("parked")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	var s spot.Status
	require.NoError(t, s.UnmarshalText([]byte("out_of_order")))
	assert.Equal(t, spot.OutOfOrder, s)
	text, _ := s.MarshalText()
	assert.Equal(t, "OUT_OF_ORDER", string(text))
}
