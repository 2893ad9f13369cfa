package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents one store-level transaction.
// Client code must explicitly manage the transaction lifecycle; the
// transaction coordinator is the only production caller.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// SavePoint creates a named checkpoint inside the active transaction.
	SavePoint(ctx context.Context, name string) error

	// RollbackTo undoes every write made since the named savepoint was created
	// and discards savepoints created after it. The savepoint itself survives.
	RollbackTo(ctx context.Context, name string) error

	// ReleaseSavePoint discards the named savepoint and every savepoint created
	// after it, keeping their writes.
	ReleaseSavePoint(ctx context.Context, name string) error

	// SpotRepository returns a SpotRepository bound to the current transaction.
	SpotRepository() SpotRepository

	// VehicleRepository returns a VehicleRepository bound to the current transaction.
	VehicleRepository() VehicleRepository

	// SessionRepository returns a SessionRepository bound to the current transaction.
	SessionRepository() SessionRepository
}
