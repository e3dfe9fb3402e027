// Package log holds the logger adapters used inside the module.
package log

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/bft-labs/slship/internal/ports"
	publog "github.com/bft-labs/slship/pkg/log"
)

// NewNoopLogger returns a logger that discards everything.
func NewNoopLogger() ports.Logger {
	return publog.NewNoopLogger()
}

// NewInternalErrorLogger returns a logger that prints error-level messages
// to stderr and discards the rest. It backs Config.PrintInternalErrors.
func NewInternalErrorLogger() ports.Logger {
	return publog.With(publog.NewConsoleAdapter(os.Stderr, zerolog.ErrorLevel), publog.String("component", "slship"))
}
