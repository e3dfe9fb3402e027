package ports

import "github.com/bft-labs/slship/pkg/log"

// Logger is the structured logger used by internal packages.
type Logger = log.Logger

// Field is a structured logging key/value pair.
type Field = log.Field
