package app

// Defaults for the batching reporter.
const (
	DefaultLogVecCapacity  = 1024
	DefaultGroupCapacity   = 1024
	DefaultVecPoolCapacity = 1024

	// DefaultMaxGroupBytes keeps one upload under the service's 5 MiB
	// per-request limit.
	DefaultMaxGroupBytes = 5 << 20
)

type options struct {
	logVecCap      int
	groupCap       int
	poolCap        int
	maxGroupBytes  int
	shutdown       <-chan struct{}
	queueLimit     int
	overflow       OverflowPolicy
	stateEmitter   EventEmitter
	deliverEmitter DeliveryEmitter
}

func defaultOptions() options {
	return options{
		logVecCap:     DefaultLogVecCapacity,
		groupCap:      DefaultGroupCapacity,
		poolCap:       DefaultVecPoolCapacity,
		maxGroupBytes: DefaultMaxGroupBytes,
	}
}

// Option configures a Reporter.
type Option func(*options)

// WithLogVecCapacity sets the initial record capacity of a new batch.
func WithLogVecCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.logVecCap = n
		}
	}
}

// WithGroupCapacity sets the baseline size of the grouping map. The map is
// rebuilt at this size after a drain that found it larger.
func WithGroupCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.groupCap = n
		}
	}
}

// WithVecPoolCapacity bounds the number of record slices kept for reuse.
func WithVecPoolCapacity(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.poolCap = n
		}
	}
}

// WithMaxGroupBytes caps the encoded size of one log group. 0 disables the cap.
func WithMaxGroupBytes(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxGroupBytes = n
	}
}

// WithShutdownSignal makes the session close when ch is closed or receives.
// Cancelling the context passed to Session.Run has the same effect.
func WithShutdownSignal(ch <-chan struct{}) Option {
	return func(o *options) {
		o.shutdown = ch
	}
}

// WithQueueLimit bounds the intake queue to n records and applies policy
// when it is full. n <= 0 keeps the queue unbounded.
func WithQueueLimit(n int, policy OverflowPolicy) Option {
	return func(o *options) {
		o.queueLimit = n
		o.overflow = policy
	}
}

// WithStateEmitter receives lifecycle transitions.
func WithStateEmitter(e EventEmitter) Option {
	return func(o *options) {
		o.stateEmitter = e
	}
}

// WithDeliveryEmitter receives delivery outcomes and drop notifications.
func WithDeliveryEmitter(e DeliveryEmitter) Option {
	return func(o *options) {
		o.deliverEmitter = e
	}
}
