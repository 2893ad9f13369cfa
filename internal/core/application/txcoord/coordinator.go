package txcoord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"parking/internal/core/ports"
	"parking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Work is the body of a unit of work. It must perform every store access
// through uow and must honour ctx, which expires at the unit's deadline.
type Work[T any] func(ctx context.Context, uow ports.UnitOfWork, tc *TransactionContext) (T, error)

// Config carries the coordinator's collaborators. Nil fields get defaults:
// slog.Default(), the global otel tracer, no Prometheus registration.
type Config struct {
	Logger      *slog.Logger
	Registerer  prometheus.Registerer
	Tracer      trace.Tracer
	HistorySize int
	// Defaults fill the zero fields of the Options passed to RunUnit.
	Defaults Options
}

// Coordinator begins, commits and aborts units of work, manages their
// savepoint stacks and keeps metrics about them. It is safe for concurrent use;
// construct one per process and pass it to every operation.
type Coordinator struct {
	uowFactory ports.UnitOfWorkFactory
	logger     *slog.Logger
	tracer     trace.Tracer
	defaults   Options
	registry   *registry
	metrics    *collectors

	sleep func(ctx context.Context, d time.Duration) error
}

func NewCoordinator(uowFactory ports.UnitOfWorkFactory, cfg Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("parking/txcoord")
	}

	return &Coordinator{
		uowFactory: uowFactory,
		logger:     logger.With("component", "txcoord"),
		tracer:     tracer,
		defaults:   cfg.Defaults.withDefaults(DefaultOptions()),
		registry:   newRegistry(cfg.HistorySize),
		metrics:    newCollectors(cfg.Registerer),
		sleep:      sleepContext,
	}
}

// RunUnit executes work as one unit of work and always returns a Result.
//
// Each attempt begins a new store transaction with a fresh TransactionContext
// whose deadline is now+Timeout. Success commits. A failure rolls the store
// transaction back; transient failures are retried up to MaxRetries attempts
// in total, sleeping min(BaseBackoff*2^(attempt-1), MaxBackoff) plus up to 10%
// jitter in between. Timeouts, business failures, fatal errors and caller
// cancellation end the unit immediately. Every attempt of one call shares the
// same transaction id.
func RunUnit[T any](ctx context.Context, c *Coordinator, opts Options, work Work[T]) Result[T] {
	opts = opts.withDefaults(c.defaults)
	id := uuid.NewString()
	started := time.Now()

	c.metrics.inFlight.Inc()
	defer c.metrics.inFlight.Dec()

	var (
		value T
		tc    *TransactionContext
		err   error
		kind  Kind
	)
	for attempt := 1; ; attempt++ {
		value, tc, err = runAttempt(ctx, c, id, attempt, opts, work)
		kind = Classify(err)
		if err == nil || !kind.Retryable() || attempt >= opts.MaxRetries {
			break
		}

		delay := jitter(backoffDelay(attempt, opts.BaseBackoff, opts.MaxBackoff))
		c.logger.DebugContext(ctx, "retrying unit of work",
			"transaction_id", id,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		c.registry.retried()
		c.metrics.retries.Inc()

		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			err = fmt.Errorf("unit of work %s cancelled during backoff: %w", id, errors.Join(sleepErr, err))
			kind = KindFatal
			break
		}
	}

	duration := time.Since(started)
	if err != nil {
		tc.setStatus(StatusFailed)
		c.logFailure(ctx, tc, kind, err)
	}

	snapshot := tc.Snapshot()
	c.finish(snapshot, err, kind, started, duration)

	return Result[T]{
		Success:       err == nil,
		Data:          value,
		Err:           err,
		Kind:          kind,
		TransactionID: id,
		Attempts:      snapshot.Attempt,
		Duration:      duration,
		Context:       snapshot,
	}
}

type outcome[T any] struct {
	value T
	err   error
}

func runAttempt[T any](
	ctx context.Context,
	c *Coordinator,
	id string,
	attempt int,
	opts Options,
	work Work[T],
) (T, *TransactionContext, error) {
	var zero T

	start := time.Now()
	deadline := start.Add(opts.Timeout)
	uow := c.uowFactory.Create()
	tc := newTransactionContext(id, opts.Priority, start, deadline, opts.Metadata, attempt, uow)

	c.registry.track(tc)
	defer c.registry.untrack(id)

	ctx, span := c.tracer.Start(ctx, "txcoord.unit",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("tx.id", id),
			attribute.Int("tx.attempt", attempt),
			attribute.String("tx.priority", opts.Priority.String()),
		),
	)
	defer span.End()

	attemptCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	if err := uow.Begin(attemptCtx); err != nil {
		tc.setStatus(StatusRolledBack)
		if attemptCtx.Err() != nil {
			err = c.expired(ctx, tc, deadline, err)
		}
		recordSpanError(span, err)
		return zero, tc, fmt.Errorf("begin transaction: %w", err)
	}

	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: fmt.Errorf("unit of work panicked: %v", r)}
			}
		}()
		v, err := work(attemptCtx, uow, tc)
		done <- outcome[T]{value: v, err: err}
	}()

	var out outcome[T]
	select {
	case out = <-done:
	case <-attemptCtx.Done():
		err := c.expired(ctx, tc, deadline, attemptCtx.Err())
		c.rollback(ctx, tc, StatusFailed)
		recordSpanError(span, err)
		return zero, tc, err
	}

	if out.err != nil {
		c.rollback(ctx, tc, StatusRolledBack)
		err := out.err
		if attemptCtx.Err() != nil && !isBusiness(err) {
			err = c.expired(ctx, tc, deadline, err)
		}
		recordSpanError(span, err)
		return zero, tc, err
	}

	if err := uow.Commit(attemptCtx); err != nil {
		tc.setStatus(StatusRolledBack)
		if attemptCtx.Err() != nil {
			err = c.expired(ctx, tc, deadline, err)
		}
		recordSpanError(span, err)
		return zero, tc, fmt.Errorf("commit transaction: %w", err)
	}

	tc.setStatus(StatusCommitted)
	span.SetStatus(codes.Ok, "")
	return out.value, tc, nil
}

// CreateSavepoint pushes a new savepoint onto the context's stack and creates
// it in the store. The context must be ACTIVE.
func (c *Coordinator) CreateSavepoint(ctx context.Context, tc *TransactionContext, name string) (Savepoint, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.status != StatusActive {
		return Savepoint{}, errs.NewSavepointError(name, fmt.Sprintf("transaction %s is %s", tc.id, tc.status))
	}

	tc.nextSeq++
	id := uuid.NewString()
	sp := Savepoint{
		ID:        id,
		Name:      name,
		Sequence:  tc.nextSeq,
		CreatedAt: time.Now(),
		storeName: fmt.Sprintf("sp_%d_%s", tc.nextSeq, id[:8]),
	}

	if err := tc.uow.SavePoint(ctx, sp.storeName); err != nil {
		return Savepoint{}, fmt.Errorf("create savepoint %q: %w", name, err)
	}
	tc.savepoints = append(tc.savepoints, sp)
	return sp, nil
}

// ReleaseSavepoint discards the savepoint and everything pushed after it,
// keeping their writes.
func (c *Coordinator) ReleaseSavepoint(ctx context.Context, tc *TransactionContext, id string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	idx, err := tc.lookupActive(id)
	if err != nil {
		return err
	}

	if err = tc.uow.ReleaseSavePoint(ctx, tc.savepoints[idx].storeName); err != nil {
		return fmt.Errorf("release savepoint %q: %w", tc.savepoints[idx].Name, err)
	}
	tc.savepoints = tc.savepoints[:idx]
	return nil
}

// RollbackToSavepoint undoes the writes made since the savepoint and drops
// every savepoint pushed after it. The savepoint itself stays on the stack and
// the context stays ACTIVE.
func (c *Coordinator) RollbackToSavepoint(ctx context.Context, tc *TransactionContext, id string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	idx, err := tc.lookupActive(id)
	if err != nil {
		return err
	}

	if err = tc.uow.RollbackTo(ctx, tc.savepoints[idx].storeName); err != nil {
		return fmt.Errorf("rollback to savepoint %q: %w", tc.savepoints[idx].Name, err)
	}
	tc.savepoints = tc.savepoints[:idx+1]
	return nil
}

// Step runs fn between a savepoint and its release. If fn fails, its writes
// are rolled back to the savepoint, the savepoint is discarded and fn's error
// is returned unchanged for the unit to abort on.
func (c *Coordinator) Step(ctx context.Context, tc *TransactionContext, name string, fn func() error) error {
	sp, err := c.CreateSavepoint(ctx, tc, name)
	if err != nil {
		return err
	}

	if err = fn(); err != nil {
		if rbErr := c.RollbackToSavepoint(ctx, tc, sp.ID); rbErr != nil {
			c.logger.WarnContext(ctx, "failed to roll back step",
				"transaction_id", tc.ID(),
				"step", name,
				"error", rbErr,
			)
			return err
		}
		if relErr := c.ReleaseSavepoint(ctx, tc, sp.ID); relErr != nil {
			c.logger.WarnContext(ctx, "failed to discard step savepoint",
				"transaction_id", tc.ID(),
				"step", name,
				"error", relErr,
			)
		}
		return err
	}

	return c.ReleaseSavepoint(ctx, tc, sp.ID)
}

// TransactionInfo describes a unit that is either running or recently finished.
type TransactionInfo struct {
	Active   *Snapshot    `json:"active,omitempty"`
	Finished *UnitMetrics `json:"finished,omitempty"`
}

// Lookup finds a unit by transaction id among in-flight contexts, then history.
func (c *Coordinator) Lookup(id string) (TransactionInfo, bool) {
	if tc, ok := c.registry.active(id); ok {
		s := tc.Snapshot()
		return TransactionInfo{Active: &s}, true
	}
	if m, ok := c.registry.finished(id); ok {
		return TransactionInfo{Finished: &m}, true
	}
	return TransactionInfo{}, false
}

// InFlight returns snapshots of running units, oldest first.
func (c *Coordinator) InFlight() []Snapshot {
	return c.registry.activeSnapshots()
}

// History returns the retained metrics of finished units, oldest first.
func (c *Coordinator) History() []UnitMetrics {
	return c.registry.snapshotHistory()
}

func (c *Coordinator) Stats() Stats {
	return c.registry.stats()
}

// Cleanup evicts history entries that finished more than maxAge ago and
// returns how many were removed.
func (c *Coordinator) Cleanup(maxAge time.Duration) int {
	return c.registry.cleanup(time.Now().Add(-maxAge))
}

func (c *Coordinator) rollback(ctx context.Context, tc *TransactionContext, status Status) {
	if err := tc.uow.Rollback(context.WithoutCancel(ctx)); err != nil {
		c.logger.WarnContext(ctx, "failed to roll back transaction",
			"transaction_id", tc.ID(),
			"attempt", tc.Attempt(),
			"error", err,
		)
	}
	tc.mu.Lock()
	tc.status = status
	tc.savepoints = tc.savepoints[:0]
	tc.mu.Unlock()
}

func (c *Coordinator) finish(s Snapshot, err error, kind Kind, started time.Time, duration time.Duration) {
	m := UnitMetrics{
		TransactionID: s.ID,
		Priority:      s.Priority,
		Status:        s.Status,
		Success:       err == nil,
		Kind:          kind,
		Attempts:      s.Attempt,
		Duration:      duration,
		StartedAt:     started,
		FinishedAt:    started.Add(duration),
		Metadata:      s.Metadata,
	}
	if err != nil {
		m.Error = err.Error()
	}
	c.registry.record(m)

	label := outcomeLabel(err == nil)
	c.metrics.units.WithLabelValues(label, kind.String()).Inc()
	c.metrics.duration.WithLabelValues(label).Observe(duration.Seconds())
}

func (c *Coordinator) logFailure(ctx context.Context, tc *TransactionContext, kind Kind, err error) {
	attrs := []any{
		"transaction_id", tc.ID(),
		"attempt", tc.Attempt(),
		"priority", tc.Priority().String(),
		"kind", kind.String(),
		"error", err,
	}
	switch kind {
	case KindBusiness, KindValidation:
		c.logger.InfoContext(ctx, "unit of work rejected", attrs...)
	case KindTimeout:
		c.logger.WarnContext(ctx, "unit of work timed out", attrs...)
	default:
		c.logger.ErrorContext(ctx, "unit of work failed", attrs...)
	}
}

func (tc *TransactionContext) lookupActive(id string) (int, error) {
	if tc.status != StatusActive {
		return -1, errs.NewSavepointError(id, fmt.Sprintf("transaction %s is %s", tc.id, tc.status))
	}
	idx := tc.indexOf(id)
	if idx < 0 {
		return -1, errs.NewSavepointError(id, "not found on the savepoint stack")
	}
	return idx, nil
}

// expired converts the end of an attempt's context into the unit's error and
// counts it when it is a timeout.
func (c *Coordinator) expired(ctx context.Context, tc *TransactionContext, deadline time.Time, cause error) error {
	err := expiredError(ctx, deadline, cause)
	if Classify(err) == KindTimeout {
		c.metrics.timeouts.Inc()
		c.logger.WarnContext(ctx, "unit of work exceeded its deadline",
			"transaction_id", tc.ID(),
			"attempt", tc.Attempt(),
			"deadline", deadline,
		)
	}
	return err
}

// expiredError reports why an attempt's context ended: caller cancellation is
// fatal, anything else is the unit's deadline.
func expiredError(parent context.Context, deadline time.Time, cause error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return fmt.Errorf("unit of work cancelled by caller: %w", errors.Join(context.Canceled, cause))
	}
	return errs.NewDeadlineExceededErrorWithCause(deadline, cause)
}

func isBusiness(err error) bool {
	k := Classify(err)
	return k == KindBusiness || k == KindValidation
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func backoffDelay(attempt int, base, maxDelay time.Duration) time.Duration {
	shift := attempt - 1
	if shift < 0 {
		shift = 0
	}
	if base <= 0 {
		return 0
	}
	if base > maxDelay || shift >= 63 || base > maxDelay>>shift {
		return maxDelay
	}
	return base << shift
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(d/10+1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
