package slship

import (
	"time"

	httpadapter "github.com/bft-labs/slship/internal/adapters/http"
	"github.com/bft-labs/slship/internal/domain"
)

// Re-exported data model.
type (
	// Record is one log entry.
	Record = domain.Record
	// RecordOption configures a new Record.
	RecordOption = domain.RecordOption
	// Fields is the ordered key/value store behind record contents and tags.
	Fields = domain.Fields
	// Pair is one key/value entry.
	Pair = domain.Pair
	// Metadata is the immutable topic, source and tags of a log group.
	Metadata = domain.Metadata
	// MetadataBuilder assembles Metadata.
	MetadataBuilder = domain.MetadataBuilder
	// CapacityError carries a pair rejected by a full Fields.
	CapacityError = domain.CapacityError
	// DeliveryError describes a failed upload.
	DeliveryError = httpadapter.DeliveryError
)

// Errors returned by the public API, checkable with errors.Is.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrMissingField    = domain.ErrMissingField
	ErrInvalidSecret   = domain.ErrInvalidSecret
)

// NewRecord creates a record stamped with UNIX seconds.
func NewRecord(timestamp uint32, opts ...RecordOption) Record {
	return domain.NewRecord(timestamp, opts...)
}

// RecordAt creates a record stamped with t, including nanoseconds.
func RecordAt(t time.Time, opts ...RecordOption) Record {
	return domain.RecordAt(t, opts...)
}

// Now creates a record stamped with the current time.
func Now(opts ...RecordOption) Record {
	return domain.Now(opts...)
}

// WithSubsecNanos sets the sub-second part of a record's timestamp.
func WithSubsecNanos(nanos uint32) RecordOption {
	return domain.WithSubsecNanos(nanos)
}

// WithContentCapacity sizes a record's contents; capacity 0 is unbounded.
func WithContentCapacity(inline, capacity int) RecordOption {
	return domain.WithContentCapacity(inline, capacity)
}

// NewMetadata returns a metadata builder with default tag sizing.
func NewMetadata() *MetadataBuilder {
	return domain.NewMetadata()
}

// NewMetadataWithCapacity returns a metadata builder with explicit tag sizing.
func NewMetadataWithCapacity(inline, capacity int) *MetadataBuilder {
	return domain.NewMetadataWithCapacity(inline, capacity)
}
