package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"parking/internal/adapters/out/memory"
	"parking/internal/core/application/txcoord"
	"parking/internal/core/application/usecases/commands"
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/session"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/domain/model/vehicle"
	"parking/internal/core/domain/services"
	"parking/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var checkInAt = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

// recordingPublisher collects published events and can be told to fail.
type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.SessionEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event ports.SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []ports.SessionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.SessionEvent(nil), p.events...)
}

type garage struct {
	factory     *memory.UnitOfWorkFactory
	coordinator *txcoord.Coordinator
	publisher   *recordingPublisher

	park     commands.ParkCommandHandler
	exit     commands.ExitCommandHandler
	transfer commands.TransferCommandHandler
	bulk     commands.BulkUpdateSpotStatusCommandHandler
	register commands.RegisterSpotCommandHandler
}

func newGarage(t *testing.T) *garage {
	t.Helper()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	coordinator := txcoord.NewCoordinator(factory, txcoord.Config{})
	publisher := &recordingPublisher{}
	clock := kernel.FixedClock(checkInAt)

	return &garage{
		factory:     factory,
		coordinator: coordinator,
		publisher:   publisher,
		park:        commands.NewParkCommandHandler(coordinator, clock, publisher, nil),
		exit: commands.NewExitCommandHandler(
			coordinator, clock, services.NewTariffCalculator(nil), publisher, nil,
		),
		transfer: commands.NewTransferCommandHandler(coordinator, clock, publisher, nil),
		bulk:     commands.NewBulkUpdateSpotStatusCommandHandler(coordinator, 2, nil),
		register: commands.NewRegisterSpotCommandHandler(coordinator),
	}
}

func (g *garage) addSpot(t *testing.T) kernel.UUID {
	t.Helper()
	cmd, err := commands.NewRegisterSpotCommand(kernel.NewUUID())
	require.NoError(t, err)
	result := g.register.Handle(t.Context(), cmd)
	require.True(t, result.Success, "%v", result.Err)
	return result.Data.ID()
}

func (g *garage) parkVehicle(t *testing.T, spotID kernel.UUID, plate string) commands.ParkResult {
	t.Helper()
	cmd, err := commands.NewParkCommand(spotID, plate, vehicle.Car, nil)
	require.NoError(t, err)
	result := g.park.Handle(t.Context(), cmd)
	require.True(t, result.Success, "%v", result.Err)
	return result.Data
}

// read runs fn in a read-only transaction against the committed state.
func (g *garage) read(t *testing.T, fn func(ctx context.Context, uow ports.UnitOfWork)) {
	t.Helper()
	ctx := context.Background()
	uow := g.factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()
	fn(ctx, uow)
}

func (g *garage) spot(t *testing.T, id kernel.UUID) *spot.Spot {
	t.Helper()
	var out *spot.Spot
	g.read(t, func(ctx context.Context, uow ports.UnitOfWork) {
		var err error
		out, err = uow.SpotRepository().Get(ctx, id)
		require.NoError(t, err)
	})
	return out
}

func (g *garage) vehicle(t *testing.T, plate string) *vehicle.Vehicle {
	t.Helper()
	var out *vehicle.Vehicle
	g.read(t, func(ctx context.Context, uow ports.UnitOfWork) {
		var err error
		out, err = uow.VehicleRepository().FindByPlate(ctx, plate)
		require.NoError(t, err)
	})
	return out
}

func (g *garage) activeSessions(t *testing.T, spotID kernel.UUID) []*session.Session {
	t.Helper()
	var out []*session.Session
	g.read(t, func(ctx context.Context, uow ports.UnitOfWork) {
		var err error
		out, err = uow.SessionRepository().ListActiveBySpot(ctx, spotID)
		require.NoError(t, err)
	})
	return out
}

// Mocks for driving the coordinator through failures the memory store does
// not produce, such as a conditional update losing a race.

type MockSpotRepository struct{ mock.Mock }

func (m *MockSpotRepository) Add(ctx context.Context, s *spot.Spot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSpotRepository) Get(ctx context.Context, id kernel.UUID) (*spot.Spot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spot.Spot), args.Error(1)
}

func (m *MockSpotRepository) UpdateIfStatus(ctx context.Context, s *spot.Spot, expected spot.Status) (bool, error) {
	args := m.Called(ctx, s, expected)
	return args.Bool(0), args.Error(1)
}

func (m *MockSpotRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) SavePoint(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockUoW) RollbackTo(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockUoW) ReleaseSavePoint(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockUoW) SpotRepository() ports.SpotRepository {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(ports.SpotRepository)
}

func (m *MockUoW) VehicleRepository() ports.VehicleRepository {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(ports.VehicleRepository)
}

func (m *MockUoW) SessionRepository() ports.SessionRepository {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(ports.SessionRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() ports.UnitOfWork {
	args := m.Called()
	return args.Get(0).(ports.UnitOfWork)
}
