package app

import "time"

// Reasons passed to DeliveryEmitter.OnRecordDropped.
const (
	DropOversize  = "oversize"
	DropQueueFull = "queue_full"
)

// DeliveryEmitter is called after each delivery attempt and whenever records
// are discarded without one. Calls come from the session goroutine.
type DeliveryEmitter interface {
	OnDeliverySuccess(records, bytes int, duration time.Duration)
	OnDeliveryError(err error, records int)
	OnRecordDropped(reason string, count int)
}
