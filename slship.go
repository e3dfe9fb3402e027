// Package slship ships structured log records to an Aliyun Log Service
// logstore.
//
// Example usage:
//
//	cfg := slship.DefaultConfig()
//	cfg.Endpoint = "cn-hangzhou.log.aliyuncs.com"
//	cfg.Project, cfg.Logstore = "my-project", "app"
//	cfg.AccessKey, cfg.AccessSecret = ak, sk
//	s, err := slship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Stop()
//
//	meta := slship.NewMetadata().Topic("web").Build()
//	rec := slship.Now()
//	rec.With("message", "hello")
//	s.Report(meta, rec)
//
// The full API lives in pkg/slship; this package re-exports the common parts.
package slship

import (
	"context"

	"github.com/bft-labs/slship/pkg/slship"
)

// Config holds the configuration for a Shipper.
type Config = slship.Config

// Shipper batches reported records and uploads them.
type Shipper = slship.Shipper

// Record is a single log entry.
type Record = slship.Record

// Metadata is the topic, source and tags shared by a log group.
type Metadata = slship.Metadata

// Option configures a Shipper.
type Option = slship.Option

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return slship.DefaultConfig()
}

// New creates a Shipper. See slship.New in pkg/slship.
func New(cfg Config, opts ...Option) (*Shipper, error) {
	return slship.New(cfg, opts...)
}

// NewMetadata returns a metadata builder.
func NewMetadata() *slship.MetadataBuilder {
	return slship.NewMetadata()
}

// Now creates a record stamped with the current time.
func Now(opts ...slship.RecordOption) Record {
	return slship.Now(opts...)
}

// Run starts a Shipper, calls produce with it and stops it once produce
// returns or ctx is cancelled. Everything reported before then is delivered,
// subject to Config.ShutdownTimeout.
func Run(ctx context.Context, cfg Config, produce func(context.Context, *Shipper) error, opts ...Option) error {
	s, err := slship.New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := s.Start(context.Background()); err != nil {
		return err
	}
	perr := produce(ctx, s)
	if err := s.Stop(); err != nil {
		return err
	}
	return perr
}
