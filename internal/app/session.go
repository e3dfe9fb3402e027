package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bft-labs/slship/internal/domain"
	"github.com/bft-labs/slship/internal/ports"
	"github.com/bft-labs/slship/internal/wire"
	"github.com/bft-labs/slship/pkg/log"
)

// pendingBatch is the records accumulated for one metadata key and their
// encoded size as a log group.
type pendingBatch struct {
	meta *domain.Metadata
	logs []domain.Record
	size int
}

// Session owns all batching state. Run must be called exactly once; nothing
// else touches the grouping map or pool.
type Session struct {
	r       *Reporter
	timer   ports.DrainTimer
	logger  ports.Logger
	emitter DeliveryEmitter

	groups  map[string]*pendingBatch
	order   []*pendingBatch
	pool    *vecPool
	scratch []intakeItem

	maxGroupBytes int
	groupCap      int

	running atomic.Bool
}

func newSession(r *Reporter, timer ports.DrainTimer) *Session {
	o := r.opts
	return &Session{
		r:             r,
		timer:         timer,
		logger:        r.logger,
		emitter:       o.deliverEmitter,
		groups:        make(map[string]*pendingBatch, o.groupCap),
		pool:          newVecPool(o.poolCap, o.logVecCap),
		maxGroupBytes: o.maxGroupBytes,
		groupCap:      o.groupCap,
	}
}

// Run consumes the intake until ctx is cancelled or the shutdown signal
// fires, then refuses further reports, drains everything accepted so far and
// returns. Deliveries are not cancelled by ctx. Only the first call runs;
// later calls return ErrAlreadyRunning.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return domain.ErrAlreadyRunning
	}
	defer close(s.r.done)
	defer s.stopTimer()
	deliverCtx := context.WithoutCancel(ctx)

	tick := s.timer.Arm()
	for {
		select {
		case <-s.r.queue.notify:
			s.consume(deliverCtx)

		case <-tick:
			s.consume(deliverCtx)
			s.drain(deliverCtx)
			tick = s.timer.Arm()

		case done := <-s.r.flushReq:
			s.consume(deliverCtx)
			s.drain(deliverCtx)
			close(done)

		case <-s.r.opts.shutdown:
			return s.close(deliverCtx, "shutdown signal")

		case <-ctx.Done():
			return s.close(deliverCtx, "context done")
		}
	}
}

func (s *Session) close(ctx context.Context, reason string) error {
	if err := s.r.lifecycle.TransitionTo(StateClosing, reason); err != nil {
		return err
	}
	s.r.queue.close()
	s.consume(ctx)
	s.drain(ctx)
	return s.r.lifecycle.TransitionTo(StateClosed, "final drain complete")
}

// stopTimer releases timers that support it, such as IntervalTimer.
func (s *Session) stopTimer() {
	if st, ok := s.timer.(interface{ Stop() }); ok {
		st.Stop()
	}
}

// consume moves every queued record into its batch.
func (s *Session) consume(ctx context.Context) {
	items := s.r.queue.take(s.scratch)
	for i := range items {
		s.add(ctx, items[i].meta, items[i].rec)
	}
	clear(items)
	s.scratch = items[:0]
}

// add appends rec to the batch for meta. When that pushes the batch over
// the size cap, the earlier records are delivered at once and rec starts
// the batch afresh, or is dropped if it is over the cap on its own.
func (s *Session) add(ctx context.Context, meta *domain.Metadata, rec domain.Record) {
	b, ok := s.groups[meta.Key()]
	if !ok {
		b = &pendingBatch{meta: meta, size: wire.MetadataLen(meta)}
		s.groups[meta.Key()] = b
		s.order = append(s.order, b)
	}
	if b.logs == nil {
		b.logs = s.pool.get()
	}

	recLen := wire.RecordLen(&rec)
	if s.maxGroupBytes == 0 || b.size+recLen <= s.maxGroupBytes {
		b.logs = append(b.logs, rec)
		b.size += recLen
		return
	}

	if len(b.logs) > 0 {
		s.deliver(ctx, b)
		clear(b.logs)
		b.logs = b.logs[:0]
		b.size = wire.MetadataLen(meta)
	}

	if b.size+recLen > s.maxGroupBytes {
		topic, _ := meta.Topic()
		s.logger.Warn("dropping record larger than max group size",
			log.Int("size", b.size+recLen),
			log.Int("limit", s.maxGroupBytes),
			log.String("topic", topic),
		)
		if s.emitter != nil {
			s.emitter.OnRecordDropped(DropOversize, 1)
		}
		return
	}
	b.logs = append(b.logs, rec)
	b.size += recLen
}

// drain delivers every held batch in first-seen order, returns the record
// slices to the pool and resets the grouping map.
func (s *Session) drain(ctx context.Context) {
	if n := s.r.queue.takeDropped(); n > 0 {
		s.logger.Warn("intake queue full, records dropped",
			log.Int("dropped", n),
			log.String("policy", s.r.opts.overflow.String()),
		)
		if s.emitter != nil {
			s.emitter.OnRecordDropped(DropQueueFull, n)
		}
	}

	if len(s.order) == 0 {
		return
	}

	groups, records := 0, 0
	for i, b := range s.order {
		if len(b.logs) > 0 {
			s.deliver(ctx, b)
			groups++
			records += len(b.logs)
		}
		s.pool.put(b.logs)
		b.logs = nil
		s.order[i] = nil
	}
	s.order = s.order[:0]

	if len(s.groups) > s.groupCap {
		s.groups = make(map[string]*pendingBatch, s.groupCap)
		s.order = make([]*pendingBatch, 0, s.groupCap)
	} else {
		clear(s.groups)
	}

	s.logger.Debug("drained log groups",
		log.Int("groups", groups),
		log.Int("records", records),
		log.Int("pooled", s.pool.size()),
	)
}

func (s *Session) deliver(ctx context.Context, b *pendingBatch) {
	start := time.Now()
	err := s.r.deliverer.Deliver(ctx, b.meta, b.logs)
	elapsed := time.Since(start)

	if err != nil {
		s.logger.Error("log group delivery failed",
			log.Err(err),
			log.Int("records", len(b.logs)),
			log.Int("bytes", b.size),
		)
		if s.emitter != nil {
			s.emitter.OnDeliveryError(err, len(b.logs))
		}
		return
	}

	if s.emitter != nil {
		s.emitter.OnDeliverySuccess(len(b.logs), b.size, elapsed)
	}
}
