package app

import (
	"sync"

	"github.com/bft-labs/slship/internal/domain"
)

// OverflowPolicy selects what a bounded intake queue does when full.
type OverflowPolicy int

const (
	// OverflowDropNewest refuses the record being reported.
	OverflowDropNewest OverflowPolicy = iota
	// OverflowDropOldest evicts the oldest queued record to make room.
	OverflowDropOldest
)

// String returns the policy name used in configuration.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowDropNewest:
		return "drop_newest"
	case OverflowDropOldest:
		return "drop_oldest"
	default:
		return "unknown"
	}
}

type intakeItem struct {
	meta *domain.Metadata
	rec  domain.Record
}

// intakeQueue is a multi-producer queue consumed by one session. push never
// blocks; the consumer is woken through notify, which holds at most one
// pending signal.
type intakeQueue struct {
	mu      sync.Mutex
	items   []intakeItem
	closed  bool
	limit   int
	policy  OverflowPolicy
	dropped int
	notify  chan struct{}
}

func newIntakeQueue(limit int, policy OverflowPolicy) *intakeQueue {
	return &intakeQueue{
		limit:  limit,
		policy: policy,
		notify: make(chan struct{}, 1),
	}
}

// push enqueues it. It returns false only when the queue is closed; records
// lost to the overflow policy are counted instead.
func (q *intakeQueue) push(it intakeItem) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if q.limit > 0 && len(q.items) >= q.limit {
		q.dropped++
		if q.policy == OverflowDropNewest {
			q.mu.Unlock()
			return true
		}
		copy(q.items, q.items[1:])
		q.items[len(q.items)-1] = it
	} else {
		q.items = append(q.items, it)
	}
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// take moves every queued item out, handing spare back as the new backing
// storage so buffers alternate between producer and consumer.
func (q *intakeQueue) take(spare []intakeItem) []intakeItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = spare[:0]
	return items
}

// close refuses further pushes. Items already queued stay available to take.
func (q *intakeQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

func (q *intakeQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// takeDropped returns and resets the overflow drop count.
func (q *intakeQueue) takeDropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.dropped
	q.dropped = 0
	return n
}

func (q *intakeQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
