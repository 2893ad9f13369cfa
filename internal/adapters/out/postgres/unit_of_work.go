// Package postgres provides the GORM-based Unit of Work used when the service
// runs against PostgreSQL.
//
// Each GormUnitOfWork wraps one database transaction. Repositories obtained
// from it share that transaction, and savepoints map directly onto SQL
// SAVEPOINT, ROLLBACK TO SAVEPOINT and RELEASE SAVEPOINT statements:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	if err := uow.SavePoint(ctx, "sp_1"); err != nil {
//	    uow.Rollback(ctx)
//	    return err
//	}
//	if err := uow.SpotRepository().Add(ctx, s); err != nil {
//	    uow.RollbackTo(ctx, "sp_1")
//	}
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides an isolated transaction
//   - Multiple goroutines should use separate UnitOfWork instances
//   - Rollback may be called from another goroutine while a statement is running
//
// Driver errors that are worth retrying are wrapped as *errs.TransientError
// by the pgerr package.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"parking/internal/adapters/out/postgres/pgerr"
	"parking/internal/adapters/out/postgres/sessionrepo"
	"parking/internal/adapters/out/postgres/spotrepo"
	"parking/internal/adapters/out/postgres/vehiclerepo"
	"parking/internal/core/ports"
	"parking/internal/pkg/errs"

	"gorm.io/gorm"
)

var savepointName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
// Factory ensures each business operation gets a fresh unit of work instance
// with proper isolation from other concurrent operations.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    return err
//	}
//	factory := NewGormUnitOfWorkFactory(db)
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork instance.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork coordinates one database transaction.
type GormUnitOfWork struct {
	mu sync.Mutex
	db *gorm.DB
	tx *gorm.DB
}

// Begin starts a transaction. Calling Begin again while a transaction is
// open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	uow.mu.Lock()
	defer uow.mu.Unlock()

	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return pgerr.Translate("begin transaction", tx.Error)
	}
	uow.tx = tx
	return nil
}

// Commit finalizes the transaction. Serialization failures reported at
// commit time are returned as transient errors.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	tx, err := uow.take()
	if err != nil {
		return err
	}
	return pgerr.Translate("commit transaction", tx.Commit().Error)
}

// Rollback discards the transaction. A transaction the driver already
// aborted because its context expired counts as rolled back.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	tx, err := uow.take()
	if err != nil {
		return err
	}
	if err := tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func (uow *GormUnitOfWork) take() (*gorm.DB, error) {
	uow.mu.Lock()
	defer uow.mu.Unlock()

	if uow.tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	tx := uow.tx
	uow.tx = nil
	return tx, nil
}

// SavePoint issues SAVEPOINT name.
func (uow *GormUnitOfWork) SavePoint(ctx context.Context, name string) error {
	return uow.savepointExec(ctx, name, func(tx *gorm.DB) error {
		return tx.SavePoint(name).Error
	})
}

// RollbackTo issues ROLLBACK TO SAVEPOINT name. This also clears the aborted
// state PostgreSQL enters after a failed statement.
func (uow *GormUnitOfWork) RollbackTo(ctx context.Context, name string) error {
	return uow.savepointExec(ctx, name, func(tx *gorm.DB) error {
		return tx.RollbackTo(name).Error
	})
}

// ReleaseSavePoint issues RELEASE SAVEPOINT name.
func (uow *GormUnitOfWork) ReleaseSavePoint(ctx context.Context, name string) error {
	return uow.savepointExec(ctx, name, func(tx *gorm.DB) error {
		return tx.Exec("RELEASE SAVEPOINT " + name).Error
	})
}

func (uow *GormUnitOfWork) savepointExec(ctx context.Context, name string, exec func(tx *gorm.DB) error) error {
	if !savepointName.MatchString(name) {
		return errs.NewValueIsInvalidErrorWithCause("savepoint name", fmt.Errorf("%q is not a plain identifier", name))
	}

	uow.mu.Lock()
	tx := uow.tx
	uow.mu.Unlock()

	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return exec(tx.WithContext(ctx))
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	uow.mu.Lock()
	defer uow.mu.Unlock()

	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// SpotRepository returns a repository bound to the open transaction, or to
// the plain connection when no transaction is open.
func (uow *GormUnitOfWork) SpotRepository() ports.SpotRepository {
	return spotrepo.NewGormSpotRepository(uow.conn())
}

func (uow *GormUnitOfWork) VehicleRepository() ports.VehicleRepository {
	return vehiclerepo.NewGormVehicleRepository(uow.conn())
}

func (uow *GormUnitOfWork) SessionRepository() ports.SessionRepository {
	return sessionrepo.NewGormSessionRepository(uow.conn())
}
