package commands_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"parking/internal/core/application/txcoord"
	"parking/internal/core/application/usecases/commands"
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/domain/model/vehicle"
	"parking/internal/core/ports"
	"parking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestParkCommandHandler_Handle_Success(t *testing.T) {
	g := newGarage(t)
	spotID := g.addSpot(t)

	got := g.parkVehicle(t, spotID, "ab 123")

	assert.True(t, got.Session.IsActive())
	assert.Equal(t, checkInAt, got.Session.CheckInTime())
	assert.Equal(t, spot.Occupied, got.Spot.Status())

	s := g.spot(t, spotID)
	assert.Equal(t, spot.Occupied, s.Status())
	vehicleID := got.Vehicle.ID()
	assert.True(t, kernel.SameUUID(s.CurrentVehicle(), &vehicleID))

	v := g.vehicle(t, "AB 123")
	assert.Equal(t, vehicle.Car, v.Type())
	assert.True(t, kernel.SameUUID(v.CurrentSpot(), &spotID))

	active := g.activeSessions(t, spotID)
	require.Len(t, active, 1)
	assert.True(t, active[0].ID().IsEqual(got.Session.ID()))

	events := g.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ports.SessionParked, events[0].Type)
	assert.Equal(t, "AB 123", events[0].LicensePlate)
	assert.Equal(t, spotID.String(), events[0].SpotID)
}

func TestParkCommandHandler_Handle_ValidationError(t *testing.T) {
	g := newGarage(t)

	result := g.park.Handle(t.Context(), commands.ParkCommand{})

	require.False(t, result.Success)
	require.ErrorIs(t, result.Err, commands.ErrParkCommandIsNotConstructed)
	assert.Equal(t, txcoord.KindValidation, result.Kind)
	assert.Empty(t, result.TransactionID)
}

func TestParkCommandHandler_Handle_SpotNotAvailable(t *testing.T) {
	g := newGarage(t)
	spotID := g.addSpot(t)
	g.parkVehicle(t, spotID, "AAA 1")

	cmd, err := commands.NewParkCommand(spotID, "BBB 2", vehicle.Car, nil)
	require.NoError(t, err)
	result := g.park.Handle(t.Context(), cmd)

	require.False(t, result.Success)
	require.ErrorIs(t, result.Err, commands.ErrSpotNotAvailable)
	assert.Equal(t, txcoord.KindBusiness, result.Kind)
	assert.Equal(t, 1, result.Attempts)

	// The unknown vehicle created inside the failed unit is rolled back too.
	g.read(t, func(ctx context.Context, uow ports.UnitOfWork) {
		_, err := uow.VehicleRepository().FindByPlate(ctx, "BBB 2")
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestParkCommandHandler_Handle_UnknownSpot(t *testing.T) {
	g := newGarage(t)

	cmd, err := commands.NewParkCommand(kernel.NewUUID(), "AAA 1", vehicle.Car, nil)
	require.NoError(t, err)
	result := g.park.Handle(t.Context(), cmd)

	require.ErrorIs(t, result.Err, commands.ErrSpotNotAvailable)
	require.ErrorIs(t, result.Err, errs.ErrBusinessRule)
}

func TestParkCommandHandler_Handle_SpotUnderMaintenance(t *testing.T) {
	g := newGarage(t)
	spotID := g.addSpot(t)

	bulk, err := commands.NewBulkUpdateSpotStatusCommand([]kernel.UUID{spotID}, spot.Maintenance, "")
	require.NoError(t, err)
	require.True(t, g.bulk.Handle(t.Context(), bulk).Success)

	cmd, err := commands.NewParkCommand(spotID, "AAA 1", vehicle.Car, nil)
	require.NoError(t, err)
	result := g.park.Handle(t.Context(), cmd)

	require.ErrorIs(t, result.Err, commands.ErrSpotNotAvailable)
	assert.Contains(t, result.Err.Error(), "MAINTENANCE")
}

func TestParkCommandHandler_Handle_VehicleAlreadyParked(t *testing.T) {
	g := newGarage(t)
	first := g.addSpot(t)
	second := g.addSpot(t)
	g.parkVehicle(t, first, "AAA 1")

	cmd, err := commands.NewParkCommand(second, "aaa 1", vehicle.Car, nil)
	require.NoError(t, err)
	result := g.park.Handle(t.Context(), cmd)

	require.ErrorIs(t, result.Err, commands.ErrVehicleAlreadyParked)
	assert.Equal(t, spot.Available, g.spot(t, second).Status())
	assert.Empty(t, g.activeSessions(t, second))
}

func TestParkCommandHandler_Handle_ReusesKnownVehicle(t *testing.T) {
	g := newGarage(t)
	spotID := g.addSpot(t)
	parked := g.parkVehicle(t, spotID, "KNOWN 1")

	exitCmd, err := commands.NewExitCommand("KNOWN 1", nil)
	require.NoError(t, err)
	require.True(t, g.exit.Handle(t.Context(), exitCmd).Success)

	again := g.parkVehicle(t, spotID, "known 1")
	assert.True(t, again.Vehicle.ID().IsEqual(parked.Vehicle.ID()))
	assert.False(t, again.Session.ID().IsEqual(parked.Session.ID()))
}

func TestParkCommandHandler_Handle_PublishFailureKeepsCommit(t *testing.T) {
	g := newGarage(t)
	spotID := g.addSpot(t)
	g.publisher.err = errors.New("broker down")

	cmd, err := commands.NewParkCommand(spotID, "AAA 1", vehicle.Car, nil)
	require.NoError(t, err)
	result := g.park.Handle(t.Context(), cmd)

	require.True(t, result.Success)
	assert.Equal(t, spot.Occupied, g.spot(t, spotID).Status())
}

func TestParkCommandHandler_Handle_ConcurrentParksOneWinner(t *testing.T) {
	g := newGarage(t)
	spotID := g.addSpot(t)

	const n = 16
	var succeeded, rejected atomic.Int32

	var eg errgroup.Group
	for i := range n {
		eg.Go(func() error {
			cmd, err := commands.NewParkCommand(spotID, fmt.Sprintf("CAR %d", i), vehicle.Car, nil)
			if err != nil {
				return err
			}
			result := g.park.Handle(context.Background(), cmd)
			switch {
			case result.Success:
				succeeded.Add(1)
			case errors.Is(result.Err, commands.ErrSpotNotAvailable):
				rejected.Add(1)
			default:
				return result.Err
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(n-1), rejected.Load())
	assert.Equal(t, spot.Occupied, g.spot(t, spotID).Status())
	assert.Len(t, g.activeSessions(t, spotID), 1)
}

func TestParkCommandHandler_Handle_TransientBeginIsRetried(t *testing.T) {
	spotID := kernel.NewUUID()
	repo := new(MockSpotRepository)
	repo.On("Get", mock.Anything, spotID).Return(nil, errs.NewObjectNotFoundError("spot", spotID)).Once()

	failing := new(MockUoW)
	failing.On("Begin", mock.Anything).Return(errs.NewTransientError("connection reset")).Once()

	working := new(MockUoW)
	working.On("Begin", mock.Anything).Return(nil).Once()
	working.On("SpotRepository").Return(repo)
	working.On("VehicleRepository").Return(nil).Maybe()
	working.On("SessionRepository").Return(nil).Maybe()
	working.On("Rollback", mock.Anything).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(failing).Once()
	factory.On("Create").Return(working).Once()

	coordinator := txcoord.NewCoordinator(factory, txcoord.Config{
		Defaults: txcoord.Options{BaseBackoff: 1, MaxBackoff: 1},
	})
	handler := commands.NewParkCommandHandler(coordinator, kernel.FixedClock(checkInAt), nil, nil)
	cmd, err := commands.NewParkCommand(spotID, "AAA 1", vehicle.Car, nil)
	require.NoError(t, err)

	result := handler.Handle(t.Context(), cmd)

	require.ErrorIs(t, result.Err, commands.ErrSpotNotAvailable)
	assert.Equal(t, 2, result.Attempts)
	factory.AssertExpectations(t)
	failing.AssertExpectations(t)
	working.AssertExpectations(t)
}
