// Package domain contains the core domain entities and value objects for slship.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, compression, logging) and
// contains only the log data model and its invariants.
//
// # Entities
//
//   - [Record]: A single timestamped log record with ordered key/value contents
//   - [Fields]: The small ordered map backing record contents and metadata tags
//   - [Metadata]: Topic, source and tags shared by every record of a log group;
//     also the grouping key used when batching
//
// # Design Principles
//
// Metadata is immutable once built. A [MetadataBuilder] is used to assemble it
// and [MetadataBuilder.Build] publishes a snapshot that can be shared by any
// number of goroutines and used as a grouping key.
//
// Records are owned by whoever holds them: once passed to a reporter they must
// not be modified by the caller.
package domain
