package slship

import (
	"context"
	"net/http"
	"sync"

	"github.com/bft-labs/slship/internal/adapters/compress"
	httpadapter "github.com/bft-labs/slship/internal/adapters/http"
	logadapter "github.com/bft-labs/slship/internal/adapters/log"
	"github.com/bft-labs/slship/internal/app"
	"github.com/bft-labs/slship/internal/ports"
	"github.com/bft-labs/slship/pkg/log"
)

// Version is the client version sent in the user-agent header.
const Version = httpadapter.Version

// Shipper batches reported records per metadata and uploads them to one
// logstore. Use New() to create an instance, then Start() to begin delivery.
type Shipper struct {
	config   Config
	logger   ports.Logger
	client   *httpadapter.Client
	reporter *app.Reporter
	timer    ports.DrainTimer

	mu sync.Mutex
}

// New creates a Shipper. The instance starts Idle: records reported before
// Start are queued. Returns an error if the configuration is invalid.
func New(cfg Config, opts ...Option) (*Shipper, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	switch {
	case logger != nil:
	case cfg.PrintInternalErrors:
		logger = logadapter.NewInternalErrorLogger()
	default:
		logger = logadapter.NewNoopLogger()
	}
	logger = log.With(logger, log.String("project", cfg.Project), log.String("logstore", cfg.Logstore))

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	compressor := o.compressor
	if !o.compressSet {
		var err error
		if compressor, err = compress.ByName(cfg.Compression, cfg.CompressionLevel); err != nil {
			return nil, err
		}
	}

	client, err := httpadapter.NewClient(httpadapter.ClientConfig{
		Endpoint:     cfg.Endpoint,
		Project:      cfg.Project,
		Logstore:     cfg.Logstore,
		AccessKey:    cfg.AccessKey,
		AccessSecret: cfg.AccessSecret,
		ShardKey:     cfg.ShardKey,
		Scheme:       cfg.Scheme,
	}, httpClient, compressor, logger)
	if err != nil {
		return nil, err
	}

	policy, _ := parseOverflowPolicy(cfg.OverflowPolicy)
	maxGroupBytes := cfg.MaxGroupBytes
	if maxGroupBytes < 0 {
		maxGroupBytes = 0
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	reporter := app.NewReporter(client, logger,
		app.WithLogVecCapacity(cfg.LogVecCapacity),
		app.WithGroupCapacity(cfg.GroupCapacity),
		app.WithVecPoolCapacity(cfg.VecPoolCapacity),
		app.WithMaxGroupBytes(maxGroupBytes),
		app.WithQueueLimit(cfg.QueueLimit, policy),
		app.WithStateEmitter(emitter),
		app.WithDeliveryEmitter(emitter),
	)

	timer := o.timer
	if timer == nil {
		timer = app.IntervalTimer(cfg.DrainInterval)
	}

	return &Shipper{
		config:   cfg,
		logger:   logger,
		client:   client,
		reporter: reporter,
		timer:    timer,
	}, nil
}

// Start begins batching and delivery in the background and returns at once.
// A Shipper runs at most once: Start after Start or Stop returns
// ErrAlreadyRunning. Cancelling ctx has the same effect as Stop without the wait.
func (s *Shipper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.reporter.Reporting(s.timer)
	if session == nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	lifecycle := s.reporter.Lifecycle()
	lifecycle.SetCancel(cancel)

	lifecycle.AddWorker()
	go func() {
		defer lifecycle.WorkerDone()
		defer cancel()
		if err := session.Run(runCtx); err != nil {
			s.logger.Error("reporter session ended with error", log.Err(err))
		}
	}()

	return nil
}

// Stop refuses further reports, delivers everything already reported and
// waits up to Config.ShutdownTimeout for that to finish. It returns
// ErrShutdownTimeout if the final drain is still running, which then
// continues in the background.
func (s *Shipper) Stop() error {
	s.mu.Lock()
	lifecycle := s.reporter.Lifecycle()
	if !lifecycle.CanStop() {
		s.mu.Unlock()
		return ErrNotRunning
	}
	lifecycle.Cancel()
	s.mu.Unlock()

	return lifecycle.WaitWithTimeout(s.config.ShutdownTimeout)
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Shipper) Status() State {
	return State(s.reporter.State())
}

// Report queues rec for delivery under meta. It never blocks. Records
// reported after Stop are discarded.
func (s *Shipper) Report(meta *Metadata, rec Record) {
	s.reporter.Report(meta, rec)
}

// Flush drains all batches now and waits for the uploads to finish.
func (s *Shipper) Flush(ctx context.Context) error {
	return s.reporter.Flush(ctx)
}

// Deliver uploads logs under meta immediately, bypassing batching and the
// size cap. The error is a *DeliveryError on failure.
func (s *Shipper) Deliver(ctx context.Context, meta *Metadata, logs []Record) error {
	return s.client.Deliver(ctx, meta, logs)
}

// URL returns the upload URL derived from the configuration.
func (s *Shipper) URL() string {
	return s.client.URL()
}
