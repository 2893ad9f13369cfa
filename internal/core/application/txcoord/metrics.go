package txcoord

import (
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const DefaultHistorySize = 1000

// UnitMetrics records one finished unit of work.
type UnitMetrics struct {
	TransactionID string            `json:"transactionId"`
	Priority      Priority          `json:"priority"`
	Status        Status            `json:"status"`
	Success       bool              `json:"success"`
	Kind          Kind              `json:"kind"`
	Error         string            `json:"error,omitempty"`
	Attempts      int               `json:"attempts"`
	Duration      time.Duration     `json:"duration"`
	StartedAt     time.Time         `json:"startedAt"`
	FinishedAt    time.Time         `json:"finishedAt"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Stats aggregates every unit finished since the coordinator was created.
// Cleanup of the history does not reset it.
type Stats struct {
	Total           int64         `json:"total"`
	Succeeded       int64         `json:"succeeded"`
	Failed          int64         `json:"failed"`
	Retries         int64         `json:"retries"`
	InFlight        int           `json:"inFlight"`
	AverageDuration time.Duration `json:"averageDuration"`
}

// registry tracks in-flight contexts and a bounded history of finished units.
type registry struct {
	mu       sync.RWMutex
	inFlight map[string]*TransactionContext
	history  []UnitMetrics
	limit    int

	total         int64
	succeeded     int64
	failed        int64
	retries       int64
	totalDuration time.Duration
}

func newRegistry(limit int) *registry {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &registry{
		inFlight: make(map[string]*TransactionContext),
		history:  make([]UnitMetrics, 0, min(limit, 64)),
		limit:    limit,
	}
}

func (r *registry) track(tc *TransactionContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight[tc.ID()] = tc
}

func (r *registry) untrack(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, id)
}

func (r *registry) retried() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries++
}

func (r *registry) record(m UnitMetrics) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	if m.Success {
		r.succeeded++
	} else {
		r.failed++
	}
	r.totalDuration += m.Duration

	if len(r.history) == r.limit {
		copy(r.history, r.history[1:])
		r.history = r.history[:len(r.history)-1]
	}
	r.history = append(r.history, m)
}

func (r *registry) active(id string) (*TransactionContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tc, ok := r.inFlight[id]
	return tc, ok
}

func (r *registry) activeSnapshots() []Snapshot {
	r.mu.RLock()
	contexts := make([]*TransactionContext, 0, len(r.inFlight))
	for _, tc := range r.inFlight {
		contexts = append(contexts, tc)
	}
	r.mu.RUnlock()

	out := make([]Snapshot, 0, len(contexts))
	for _, tc := range contexts {
		out = append(out, tc.Snapshot())
	}
	slices.SortFunc(out, func(a, b Snapshot) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
	return out
}

// finished returns the most recent history entry for id.
func (r *registry) finished(id string) (UnitMetrics, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].TransactionID == id {
			return r.history[i], true
		}
	}
	return UnitMetrics{}, false
}

func (r *registry) snapshotHistory() []UnitMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.history)
}

// cleanup drops history entries that finished before cutoff.
func (r *registry) cleanup(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.history)
	r.history = slices.DeleteFunc(r.history, func(m UnitMetrics) bool {
		return m.FinishedAt.Before(cutoff)
	})
	return before - len(r.history)
}

func (r *registry) stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Stats{
		Total:     r.total,
		Succeeded: r.succeeded,
		Failed:    r.failed,
		Retries:   r.retries,
		InFlight:  len(r.inFlight),
	}
	if r.total > 0 {
		s.AverageDuration = r.totalDuration / time.Duration(r.total)
	}
	return s
}

// collectors are the Prometheus series exported by a coordinator.
type collectors struct {
	units    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  prometheus.Counter
	timeouts prometheus.Counter
	inFlight prometheus.Gauge
}

func newCollectors(reg prometheus.Registerer) *collectors {
	c := &collectors{
		units: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "parking",
				Subsystem: "tx",
				Name:      "units_total",
				Help:      "Counter of finished units of work by outcome and failure kind.",
			}, []string{"outcome", "kind"}),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "parking",
				Subsystem: "tx",
				Name:      "unit_duration_seconds",
				Help:      "Bucketed histogram of unit of work duration, retries included.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
			}, []string{"outcome"}),
		retries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "parking",
				Subsystem: "tx",
				Name:      "retries_total",
				Help:      "Counter of attempts retried after a transient failure.",
			}),
		timeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "parking",
				Subsystem: "tx",
				Name:      "timeouts_total",
				Help:      "Counter of attempts aborted at their deadline.",
			}),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "parking",
				Subsystem: "tx",
				Name:      "in_flight",
				Help:      "Number of units of work currently running.",
			}),
	}
	if reg != nil {
		reg.MustRegister(c.units, c.duration, c.retries, c.timeouts, c.inFlight)
	}
	return c
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
