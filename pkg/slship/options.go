package slship

import (
	"github.com/bft-labs/slship/internal/ports"
	"github.com/bft-labs/slship/pkg/log"
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Compressor transforms an encoded payload before it is signed.
type Compressor = ports.Compressor

// DrainTimer produces drain ticks. Arm is called once at start and again
// after every tick.
type DrainTimer = ports.DrainTimer

// Option configures optional behavior of a Shipper.
type Option func(*options)

type options struct {
	httpClient   ports.HTTPClient
	logger       log.Logger
	eventHandler EventHandler
	timer        ports.DrainTimer
	compressor   ports.Compressor
	compressSet  bool
}

// WithHTTPClient sets a custom HTTP client for uploads.
// If not provided, a default client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for diagnostics.
// If not provided, a no-op logger is used unless Config.PrintInternalErrors is set.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for shipper events.
// Events are called synchronously from the batching goroutine.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithDrainTimer replaces the interval timer built from Config.DrainInterval.
func WithDrainTimer(timer DrainTimer) Option {
	return func(o *options) {
		o.timer = timer
	}
}

// WithCompressor overrides Config.Compression. A nil compressor disables
// compression.
func WithCompressor(c Compressor) Option {
	return func(o *options) {
		o.compressor = c
		o.compressSet = true
	}
}
