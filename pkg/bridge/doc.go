// Package bridge turns events from common Go logging libraries into slship
// records.
//
// Use NewHandler to ship log/slog output and NewZerologWriter as the output
// of a zerolog.Logger. Both build records with unbounded contents and report
// them under one shared Metadata.
package bridge

import "github.com/bft-labs/slship/pkg/slship"

// Sink receives records. *slship.Shipper satisfies it.
type Sink interface {
	Report(meta *slship.Metadata, rec slship.Record)
}

// Content keys used for the standard event fields.
const (
	KeyLevel   = "level"
	KeyMessage = "message"
	KeyFile    = "file"
	KeyLine    = "line"
)

func unboundedContents() slship.RecordOption {
	return slship.WithContentCapacity(8, 0)
}
