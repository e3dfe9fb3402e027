package slship

import (
	"time"

	"github.com/bft-labs/slship/internal/app"
)

// State is the lifecycle state of a Shipper.
type State int

const (
	// StateIdle means the shipper has not been started. Reports are queued.
	StateIdle State = iota
	// StateReporting means records are being batched and delivered.
	StateReporting
	// StateClosing means Stop was called and the final drain is running.
	StateClosing
	// StateClosed means the final drain finished. A shipper cannot restart.
	StateClosed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return app.State(s).String()
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// DeliverySuccessEvent is emitted after a log group was accepted.
type DeliverySuccessEvent struct {
	Records  int
	Bytes    int
	Duration time.Duration
}

// DeliveryErrorEvent is emitted when a log group could not be delivered.
// The records are discarded.
type DeliveryErrorEvent struct {
	Error   error
	Records int
}

// RecordDroppedEvent is emitted when records are discarded without a
// delivery attempt. Reason is "oversize" or "queue_full".
type RecordDroppedEvent struct {
	Reason string
	Count  int
}

// EventHandler receives shipper events.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnDeliverySuccess(DeliverySuccessEvent)
	OnDeliveryError(DeliveryErrorEvent)
	OnRecordDropped(RecordDroppedEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)         {}
func (BaseEventHandler) OnDeliverySuccess(DeliverySuccessEvent) {}
func (BaseEventHandler) OnDeliveryError(DeliveryErrorEvent)     {}
func (BaseEventHandler) OnRecordDropped(RecordDroppedEvent)     {}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: State(previous),
		Current:  State(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnDeliverySuccess(records, bytes int, duration time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnDeliverySuccess(DeliverySuccessEvent{Records: records, Bytes: bytes, Duration: duration})
}

func (e *eventEmitterWrapper) OnDeliveryError(err error, records int) {
	if e.handler == nil {
		return
	}
	e.handler.OnDeliveryError(DeliveryErrorEvent{Error: err, Records: records})
}

func (e *eventEmitterWrapper) OnRecordDropped(reason string, count int) {
	if e.handler == nil {
		return
	}
	e.handler.OnRecordDropped(RecordDroppedEvent{Reason: reason, Count: count})
}
