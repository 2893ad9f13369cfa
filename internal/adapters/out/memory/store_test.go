package memory

import (
	"context"
	"testing"
	"time"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/session"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/domain/model/vehicle"
	"parking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func begin(t *testing.T, f *UnitOfWorkFactory) *UnitOfWork {
	t.Helper()
	uow, ok := f.Create().(*UnitOfWork)
	require.True(t, ok)
	require.NoError(t, uow.Begin(context.Background()))
	return uow
}

func seedSpot(t *testing.T, f *UnitOfWorkFactory) *spot.Spot {
	t.Helper()
	s, err := spot.NewSpot(kernel.NewUUID())
	require.NoError(t, err)

	uow := begin(t, f)
	require.NoError(t, uow.SpotRepository().Add(context.Background(), s))
	require.NoError(t, uow.Commit(context.Background()))
	return s
}

func TestUnitOfWork_CommitPublishesWrites(t *testing.T) {
	ctx := context.Background()
	f := NewUnitOfWorkFactory(NewStore())
	s := seedSpot(t, f)

	uow := begin(t, f)
	got, err := uow.SpotRepository().Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, spot.Available, got.Status())
	require.NoError(t, uow.Rollback(ctx))
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	f := NewUnitOfWorkFactory(NewStore())

	s, err := spot.NewSpot(kernel.NewUUID())
	require.NoError(t, err)

	uow := begin(t, f)
	require.NoError(t, uow.SpotRepository().Add(ctx, s))
	require.NoError(t, uow.Rollback(ctx))

	uow = begin(t, f)
	defer func() { _ = uow.Rollback(ctx) }()
	_, err = uow.SpotRepository().Get(ctx, s.ID())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestUnitOfWork_FinishedTransactionRejectsAccess(t *testing.T) {
	ctx := context.Background()
	f := NewUnitOfWorkFactory(NewStore())

	uow := begin(t, f)
	require.NoError(t, uow.Rollback(ctx))

	_, err := uow.SpotRepository().Get(ctx, kernel.NewUUID())
	require.ErrorIs(t, err, ErrNoTransaction)
	require.ErrorIs(t, uow.Commit(ctx), ErrNoTransaction)
	require.ErrorIs(t, uow.Rollback(ctx), ErrNoTransaction)
}

func TestUnitOfWork_BeginWaitsForRunningTransaction(t *testing.T) {
	f := NewUnitOfWorkFactory(NewStore())
	first := begin(t, f)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	second := f.Create()
	err := second.Begin(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, first.Commit(context.Background()))
	require.NoError(t, second.Begin(context.Background()))
	require.NoError(t, second.Rollback(context.Background()))
}

func TestUnitOfWork_SavepointRollbackKeepsEarlierWrites(t *testing.T) {
	ctx := context.Background()
	f := NewUnitOfWorkFactory(NewStore())
	uow := begin(t, f)
	repo := uow.SpotRepository()

	a, _ := spot.NewSpot(kernel.NewUUID())
	b, _ := spot.NewSpot(kernel.NewUUID())

	require.NoError(t, repo.Add(ctx, a))
	require.NoError(t, uow.SavePoint(ctx, "s1"))
	require.NoError(t, repo.Add(ctx, b))
	require.NoError(t, uow.SavePoint(ctx, "s2"))

	require.NoError(t, uow.RollbackTo(ctx, "s1"))

	_, err := repo.Get(ctx, a.ID())
	require.NoError(t, err)
	_, err = repo.Get(ctx, b.ID())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)

	// s2 was discarded with the rollback, s1 survives it.
	require.ErrorIs(t, uow.RollbackTo(ctx, "s2"), ErrUnknownSavepoint)
	require.NoError(t, uow.RollbackTo(ctx, "s1"))
	require.NoError(t, uow.ReleaseSavePoint(ctx, "s1"))
	require.ErrorIs(t, uow.ReleaseSavePoint(ctx, "s1"), ErrUnknownSavepoint)

	require.NoError(t, uow.Commit(ctx))
}

func TestSpotRepository_UpdateIfStatus(t *testing.T) {
	ctx := context.Background()
	f := NewUnitOfWorkFactory(NewStore())
	s := seedSpot(t, f)

	uow := begin(t, f)
	defer func() { _ = uow.Rollback(ctx) }()
	repo := uow.SpotRepository()

	require.NoError(t, s.Occupy(kernel.NewUUID()))

	ok, err := repo.UpdateIfStatus(ctx, s, spot.Reserved)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateIfStatus(ctx, s, spot.Available)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateIfStatus(ctx, s, spot.Available)
	require.NoError(t, err)
	assert.False(t, ok, "stored status is now OCCUPIED")
}

func TestVehicleRepository_PlateIsUnique(t *testing.T) {
	ctx := context.Background()
	f := NewUnitOfWorkFactory(NewStore())
	uow := begin(t, f)
	defer func() { _ = uow.Rollback(ctx) }()
	repo := uow.VehicleRepository()

	v1, err := vehicle.NewVehicle(kernel.NewUUID(), "ab 123", vehicle.Car)
	require.NoError(t, err)
	v2, err := vehicle.NewVehicle(kernel.NewUUID(), "AB 123", vehicle.Van)
	require.NoError(t, err)

	require.NoError(t, repo.Add(ctx, v1))
	require.ErrorIs(t, repo.Add(ctx, v2), ErrDuplicateKey)

	found, err := repo.FindByPlate(ctx, " ab   123 ")
	require.NoError(t, err)
	assert.True(t, found.ID().IsEqual(v1.ID()))
}

func TestVehicleRepository_UpdateIfSpot(t *testing.T) {
	ctx := context.Background()
	f := NewUnitOfWorkFactory(NewStore())
	uow := begin(t, f)
	defer func() { _ = uow.Rollback(ctx) }()
	repo := uow.VehicleRepository()

	v, err := vehicle.NewVehicle(kernel.NewUUID(), "XY-1", vehicle.Motorcycle)
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, v))

	spotID := kernel.NewUUID()
	require.NoError(t, v.ParkAt(spotID))

	ok, err := repo.UpdateIfSpot(ctx, v, &spotID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateIfSpot(ctx, v, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.Get(ctx, v.ID())
	require.NoError(t, err)
	assert.True(t, kernel.SameUUID(got.CurrentSpot(), &spotID))
}

func TestSessionRepository_ActiveLookups(t *testing.T) {
	ctx := context.Background()
	f := NewUnitOfWorkFactory(NewStore())
	uow := begin(t, f)
	defer func() { _ = uow.Rollback(ctx) }()
	repo := uow.SessionRepository()

	spotID, vehicleID := kernel.NewUUID(), kernel.NewUUID()
	checkIn := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	done, err := session.NewSession(kernel.NewUUID(), vehicleID, spotID, checkIn.Add(-2*time.Hour), nil)
	require.NoError(t, err)
	require.NoError(t, done.Complete(checkIn.Add(-time.Hour), 500))
	active, err := session.NewSession(kernel.NewUUID(), vehicleID, spotID, checkIn, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Add(ctx, done))
	require.NoError(t, repo.Add(ctx, active))

	byVehicle, err := repo.FindActiveByVehicle(ctx, vehicleID)
	require.NoError(t, err)
	assert.True(t, byVehicle.ID().IsEqual(active.ID()))

	bySpot, err := repo.ListActiveBySpot(ctx, spotID)
	require.NoError(t, err)
	require.Len(t, bySpot, 1)

	_, err = repo.FindActiveBySpot(ctx, kernel.NewUUID())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)

	require.NoError(t, active.Complete(checkIn.Add(time.Hour), 500))
	ok, err := repo.UpdateIfStatus(ctx, active, session.Active, kernel.NewUUID())
	require.NoError(t, err)
	assert.False(t, ok, "spot precondition does not match")

	ok, err = repo.UpdateIfStatus(ctx, active, session.Active, spotID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.FindActiveByVehicle(ctx, vehicleID)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}
