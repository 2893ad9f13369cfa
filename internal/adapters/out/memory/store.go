// Package memory is a serializable in-memory store implementing the
// persistence ports. Transactions run one at a time: Begin acquires the store
// and Commit or Rollback releases it. Each transaction works on a private copy
// of the state and savepoints are snapshots of that copy.
//
// It backs STORE_DRIVER=memory and the fast unit tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/session"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/domain/model/vehicle"
	"parking/internal/core/ports"
)

var (
	ErrNoTransaction         = errors.New("no active transaction")
	ErrUnknownSavepoint      = errors.New("unknown savepoint")
	ErrDuplicateKey          = errors.New("duplicate key")
	ErrDuplicateLicensePlate = fmt.Errorf("%w: license plate", ErrDuplicateKey)
)

type spotRecord struct {
	id        kernel.UUID
	status    spot.Status
	vehicleID *kernel.UUID
}

type vehicleRecord struct {
	id           kernel.UUID
	licensePlate string
	vehicleType  vehicle.Type
	spotID       *kernel.UUID
}

type sessionRecord struct {
	id              kernel.UUID
	vehicleID       kernel.UUID
	spotID          kernel.UUID
	status          session.Status
	checkInTime     time.Time
	expectedEnd     *time.Time
	checkOutTime    *time.Time
	durationMinutes *int
	totalFeeCents   *int64
}

// state holds value records only, so a shallow map copy is a full snapshot.
type state struct {
	spots    map[kernel.UUID]spotRecord
	vehicles map[kernel.UUID]vehicleRecord
	sessions map[kernel.UUID]sessionRecord
}

func newState() state {
	return state{
		spots:    make(map[kernel.UUID]spotRecord),
		vehicles: make(map[kernel.UUID]vehicleRecord),
		sessions: make(map[kernel.UUID]sessionRecord),
	}
}

func (s state) clone() state {
	return state{
		spots:    maps.Clone(s.spots),
		vehicles: maps.Clone(s.vehicles),
		sessions: maps.Clone(s.sessions),
	}
}

// Store is the committed state shared by every unit of work it creates.
type Store struct {
	// sem has capacity one and is held for the lifetime of a transaction.
	sem chan struct{}

	mu        sync.RWMutex
	committed state
}

func NewStore() *Store {
	return &Store{
		sem:       make(chan struct{}, 1),
		committed: newState(),
	}
}

// UnitOfWorkFactory creates units of work bound to one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

type savepoint struct {
	name     string
	snapshot state
}

// UnitOfWork is one transaction against a Store. Methods are safe to call
// from the goroutine running the work and the one aborting it.
type UnitOfWork struct {
	store *Store

	mu         sync.Mutex
	active     bool
	work       state
	savepoints []savepoint
}

// Begin waits for the store to be free, or for ctx to end.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	if u.active {
		u.mu.Unlock()
		return nil
	}
	u.mu.Unlock()

	select {
	case u.store.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("begin transaction: %w", ctx.Err())
	}

	u.store.mu.RLock()
	work := u.store.committed.clone()
	u.store.mu.RUnlock()

	u.mu.Lock()
	defer u.mu.Unlock()
	u.active = true
	u.work = work
	u.savepoints = nil
	return nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return ErrNoTransaction
	}

	u.store.mu.Lock()
	u.store.committed = u.work
	u.store.mu.Unlock()

	u.finish()
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return ErrNoTransaction
	}
	u.finish()
	return nil
}

func (u *UnitOfWork) finish() {
	u.active = false
	u.work = state{}
	u.savepoints = nil
	<-u.store.sem
}

func (u *UnitOfWork) SavePoint(ctx context.Context, name string) error {
	return u.with(ctx, func(s *state) error {
		u.savepoints = append(u.savepoints, savepoint{name: name, snapshot: s.clone()})
		return nil
	})
}

func (u *UnitOfWork) RollbackTo(ctx context.Context, name string) error {
	return u.with(ctx, func(s *state) error {
		idx := u.savepointIndex(name)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownSavepoint, name)
		}
		*s = u.savepoints[idx].snapshot.clone()
		u.savepoints = u.savepoints[:idx+1]
		return nil
	})
}

func (u *UnitOfWork) ReleaseSavePoint(ctx context.Context, name string) error {
	return u.with(ctx, func(_ *state) error {
		idx := u.savepointIndex(name)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownSavepoint, name)
		}
		u.savepoints = u.savepoints[:idx]
		return nil
	})
}

// savepointIndex finds the most recent savepoint with name. Callers hold u.mu.
func (u *UnitOfWork) savepointIndex(name string) int {
	for i := len(u.savepoints) - 1; i >= 0; i-- {
		if u.savepoints[i].name == name {
			return i
		}
	}
	return -1
}

func (u *UnitOfWork) SpotRepository() ports.SpotRepository {
	return &spotRepository{uow: u}
}

func (u *UnitOfWork) VehicleRepository() ports.VehicleRepository {
	return &vehicleRepository{uow: u}
}

func (u *UnitOfWork) SessionRepository() ports.SessionRepository {
	return &sessionRepository{uow: u}
}

// with runs fn against the transaction's working state under the lock.
func (u *UnitOfWork) with(ctx context.Context, fn func(s *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return ErrNoTransaction
	}
	return fn(&u.work)
}
