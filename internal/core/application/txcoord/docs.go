// Package txcoord runs business operations as units of work over a
// transactional store.
//
// A unit of work is one call to RunUnit. Each attempt gets a fresh
// TransactionContext and a fresh store transaction, runs the caller's work
// against a deadline, and commits on success. Transient failures are retried
// with exponential backoff and jitter; business, timeout and fatal failures are
// returned immediately. Inside the work, Step brackets a group of writes with a
// savepoint so a failing step undoes only its own writes before the error
// aborts the unit.
//
// Example:
//
//	coordinator := txcoord.NewCoordinator(uowFactory, txcoord.Config{Logger: logger})
//
//	result := txcoord.RunUnit(ctx, coordinator, txcoord.DefaultOptions(),
//	    func(ctx context.Context, uow ports.UnitOfWork, tc *txcoord.TransactionContext) (int, error) {
//	        err := coordinator.Step(ctx, tc, "create-session", func() error {
//	            return uow.SessionRepository().Add(ctx, s)
//	        })
//	        return 1, err
//	    })
//	if !result.Success {
//	    return result.Err
//	}
package txcoord
