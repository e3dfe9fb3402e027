package app

import (
	"context"

	"github.com/bft-labs/slship/internal/domain"
	"github.com/bft-labs/slship/internal/ports"
	"github.com/bft-labs/slship/pkg/log"
)

// emptyMetadata groups records reported without metadata.
var emptyMetadata = domain.NewMetadata().Build()

// Reporter accepts records from any goroutine and hands them to the one
// Session that batches and delivers them.
type Reporter struct {
	deliverer ports.Deliverer
	logger    ports.Logger
	opts      options
	lifecycle *Lifecycle
	queue     *intakeQueue
	flushReq  chan chan struct{}
	done      chan struct{}
}

// NewReporter creates a reporter delivering through d. Records reported
// before a session is activated are queued for it.
func NewReporter(d ports.Deliverer, logger ports.Logger, opts ...Option) *Reporter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Reporter{
		deliverer: d,
		logger:    logger,
		opts:      o,
		lifecycle: NewLifecycle(logger, o.stateEmitter),
		queue:     newIntakeQueue(o.queueLimit, o.overflow),
		flushReq:  make(chan chan struct{}),
		done:      make(chan struct{}),
	}
}

// Report queues a copy of rec under meta, so the caller may keep changing
// rec afterwards. It never blocks and never fails; records reported once the
// reporter is closing are discarded. A nil meta groups the record with other
// records that have no topic, source or tags.
func (r *Reporter) Report(meta *domain.Metadata, rec domain.Record) {
	if meta == nil {
		meta = emptyMetadata
	}
	r.queue.push(intakeItem{meta: meta, rec: rec.Clone()})
}

// Reporting activates the reporter's only session, drained by timer. Every
// later call returns nil.
func (r *Reporter) Reporting(timer ports.DrainTimer) *Session {
	if err := r.lifecycle.TransitionTo(StateReporting, "session activated"); err != nil {
		return nil
	}
	if timer == nil {
		timer = IntervalTimer(DefaultDrainInterval)
	}
	return newSession(r, timer)
}

// Flush asks the running session to drain now and waits for the drain to
// finish.
func (r *Reporter) Flush(ctx context.Context) error {
	if r.lifecycle.State() != StateReporting {
		return domain.ErrNotRunning
	}
	done := make(chan struct{})
	select {
	case r.flushReq <- done:
	case <-r.done:
		return domain.ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the lifecycle state.
func (r *Reporter) State() State {
	return r.lifecycle.State()
}

// Lifecycle exposes the state machine for callers that run the session in
// a worker they need to wait on.
func (r *Reporter) Lifecycle() *Lifecycle {
	return r.lifecycle
}

// Done is closed once the session has finished its final drain.
func (r *Reporter) Done() <-chan struct{} {
	return r.done
}

// Pending returns the number of queued records not yet taken by the session.
func (r *Reporter) Pending() int {
	return r.queue.size()
}
