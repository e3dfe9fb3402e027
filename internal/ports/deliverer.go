package ports

import (
	"context"

	"github.com/bft-labs/slship/internal/domain"
)

// Deliverer transmits one log group to the ingestion service.
type Deliverer interface {
	// Deliver encodes, signs and uploads logs under meta.
	// Each call is a single attempt; failures are returned, never retried.
	Deliver(ctx context.Context, meta *domain.Metadata, logs []domain.Record) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, meta *domain.Metadata, logs []domain.Record) error

// Deliver calls f.
func (f DelivererFunc) Deliver(ctx context.Context, meta *domain.Metadata, logs []domain.Record) error {
	return f(ctx, meta, logs)
}
