package txcoord

import (
	"maps"
	"slices"
	"sync"
	"time"

	"parking/internal/core/ports"
)

// Status is the lifecycle state of a TransactionContext.
type Status int

const (
	StatusActive Status = iota + 1
	StatusCommitted
	StatusFailed
	StatusRolledBack
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusCommitted:
		return "COMMITTED"
	case StatusFailed:
		return "FAILED"
	case StatusRolledBack:
		return "ROLLED_BACK"
	default:
		return "UNKNOWN"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCommitted || s == StatusFailed || s == StatusRolledBack
}

// Priority travels with logs and metrics. It does not change scheduling.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityNormal:
		return "NORMAL"
	case PriorityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Savepoint is one checkpoint on a context's savepoint stack.
type Savepoint struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Sequence  int       `json:"sequence"`
	CreatedAt time.Time `json:"createdAt"`

	storeName string
}

// StoreName is the identifier handed to the store's savepoint primitives.
func (s Savepoint) StoreName() string {
	return s.storeName
}

// TransactionContext is the state one attempt of a unit of work carries.
// Only the coordinator mutates it; the accessors are safe for concurrent use.
type TransactionContext struct {
	mu sync.RWMutex

	id         string
	status     Status
	priority   Priority
	savepoints []Savepoint
	nextSeq    int
	startedAt  time.Time
	deadline   time.Time
	metadata   map[string]string
	attempt    int

	uow ports.UnitOfWork
}

func newTransactionContext(
	id string,
	priority Priority,
	startedAt, deadline time.Time,
	metadata map[string]string,
	attempt int,
	uow ports.UnitOfWork,
) *TransactionContext {
	return &TransactionContext{
		id:         id,
		status:     StatusActive,
		priority:   priority,
		savepoints: make([]Savepoint, 0),
		startedAt:  startedAt,
		deadline:   deadline,
		metadata:   maps.Clone(metadata),
		attempt:    attempt,
		uow:        uow,
	}
}

func (tc *TransactionContext) ID() string {
	return tc.id
}

func (tc *TransactionContext) Status() Status {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.status
}

func (tc *TransactionContext) Priority() Priority {
	return tc.priority
}

// Savepoints returns a copy of the stack, oldest first.
func (tc *TransactionContext) Savepoints() []Savepoint {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return slices.Clone(tc.savepoints)
}

func (tc *TransactionContext) StartedAt() time.Time {
	return tc.startedAt
}

func (tc *TransactionContext) Deadline() time.Time {
	return tc.deadline
}

// Metadata returns a copy of the caller-supplied metadata.
func (tc *TransactionContext) Metadata() map[string]string {
	return maps.Clone(tc.metadata)
}

func (tc *TransactionContext) Attempt() int {
	return tc.attempt
}

// Snapshot is a point-in-time, serializable view of a TransactionContext.
type Snapshot struct {
	ID         string            `json:"id"`
	Status     Status            `json:"status"`
	Priority   Priority          `json:"priority"`
	Savepoints []Savepoint       `json:"savepoints"`
	StartedAt  time.Time         `json:"startedAt"`
	Deadline   time.Time         `json:"deadline"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Attempt    int               `json:"attempt"`
}

func (tc *TransactionContext) Snapshot() Snapshot {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return Snapshot{
		ID:         tc.id,
		Status:     tc.status,
		Priority:   tc.priority,
		Savepoints: slices.Clone(tc.savepoints),
		StartedAt:  tc.startedAt,
		Deadline:   tc.deadline,
		Metadata:   maps.Clone(tc.metadata),
		Attempt:    tc.attempt,
	}
}

func (tc *TransactionContext) setStatus(status Status) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.status = status
}

func (tc *TransactionContext) indexOf(id string) int {
	for i, sp := range tc.savepoints {
		if sp.ID == id {
			return i
		}
	}
	return -1
}
